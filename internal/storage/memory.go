// Package storage provides local implementations of the backend ports:
// an in-memory store and a SQLite store. Both are interchangeable with the
// realtime database client.
package storage

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/hammamikhairi/recipeit/internal/domain"
	"github.com/hammamikhairi/recipeit/internal/logger"
	"github.com/hammamikhairi/recipeit/internal/review"
	"github.com/hammamikhairi/recipeit/internal/seed"
)

// Compile-time interface checks.
var (
	_ domain.RecipeSource      = (*MemoryStore)(nil)
	_ domain.SupermarketSource = (*MemoryStore)(nil)
	_ domain.ReviewWriter      = (*MemoryStore)(nil)
	_ domain.AccountStore      = (*MemoryStore)(nil)
)

// MemoryStore holds recipes, supermarkets and accounts in memory.
// Safe for concurrent access. Insertion order is preserved.
type MemoryStore struct {
	mu       sync.RWMutex
	order    []string
	recipes  map[string]*domain.Recipe
	markets  []domain.Supermarket
	accounts map[string]memAccount
	log      *logger.Logger
}

type memAccount struct {
	account domain.Account
	hash    string
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(log *logger.Logger) *MemoryStore {
	return &MemoryStore{
		recipes:  make(map[string]*domain.Recipe),
		accounts: make(map[string]memAccount),
		log:      log,
	}
}

// NewSeededMemoryStore creates a store preloaded with a catalogue.
func NewSeededMemoryStore(cat *seed.Catalogue, log *logger.Logger) *MemoryStore {
	s := NewMemoryStore(log)
	s.Load(cat)
	return s
}

// Load adds every recipe and supermarket of a catalogue. Existing entries
// with the same ID are replaced in place.
func (s *MemoryStore) Load(cat *seed.Catalogue) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range cat.Recipes {
		r := cloneRecipe(&cat.Recipes[i])
		if _, ok := s.recipes[r.ID]; !ok {
			s.order = append(s.order, r.ID)
		}
		s.recipes[r.ID] = r
	}
	for _, m := range cat.Supermarkets {
		replaced := false
		for i := range s.markets {
			if s.markets[i].ID == m.ID {
				s.markets[i] = m
				replaced = true
				break
			}
		}
		if !replaced {
			s.markets = append(s.markets, m)
		}
	}
	s.log.Debug("seeded %d recipes, %d supermarkets", len(cat.Recipes), len(cat.Supermarkets))
}

// ReplaceRecipes drops every stored recipe and keeps only the given ones,
// in order. Accounts and supermarkets are untouched.
func (s *MemoryStore) ReplaceRecipes(recipes []domain.Recipe) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.recipes = make(map[string]*domain.Recipe, len(recipes))
	s.order = make([]string, 0, len(recipes))
	for i := range recipes {
		r := cloneRecipe(&recipes[i])
		if _, ok := s.recipes[r.ID]; !ok {
			s.order = append(s.order, r.ID)
		}
		s.recipes[r.ID] = r
	}
	s.log.Debug("replaced recipes, count=%d", len(s.order))
}

// ReplaceSupermarkets drops every stored location and keeps only the
// given ones.
func (s *MemoryStore) ReplaceSupermarkets(markets []domain.Supermarket) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.markets = append([]domain.Supermarket(nil), markets...)
	s.log.Debug("replaced supermarkets, count=%d", len(s.markets))
}

// List returns all recipes in insertion order.
func (s *MemoryStore) List(ctx context.Context) ([]domain.Recipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	s.log.Debug("listing all recipes, count=%d", len(s.order))

	out := make([]domain.Recipe, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *cloneRecipe(s.recipes[id]))
	}
	return out, nil
}

// Get returns a recipe by ID.
func (s *MemoryStore) Get(ctx context.Context, id string) (*domain.Recipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.recipes[id]
	if !ok {
		s.log.Debug("recipe not found: %s", id)
		return nil, domain.ErrNotFound
	}
	return cloneRecipe(r), nil
}

// Search returns recipes whose name, description or category contain the
// query string, in insertion order.
func (s *MemoryStore) Search(ctx context.Context, query string) ([]domain.RecipeSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q := strings.ToLower(strings.TrimSpace(query))
	s.log.Debug("searching recipes for: %s", q)

	var out []domain.RecipeSummary
	for _, id := range s.order {
		r := s.recipes[id]
		if r.Matches(q) {
			out = append(out, r.Summary())
		}
	}
	return out, nil
}

// ListSupermarkets returns every store location.
func (s *MemoryStore) ListSupermarkets(ctx context.Context) ([]domain.Supermarket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Supermarket, len(s.markets))
	copy(out, s.markets)
	return out, nil
}

// AddReview appends a review and refreshes the recipe's count and rating.
func (s *MemoryStore) AddReview(ctx context.Context, recipeID string, r domain.Review) (*domain.Recipe, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.recipes[recipeID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	review.Apply(rec, r)
	s.log.Info("review added to %s by %s (%d stars, now %.1f over %d)", recipeID, r.Reviewer, r.Rating, rec.Rating, rec.ReviewCount)
	return cloneRecipe(rec), nil
}

// AppendReview stores a review without touching the recipe's aggregate
// fields. Returns the generated review key.
func (s *MemoryStore) AppendReview(ctx context.Context, recipeID string, r domain.Review) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.recipes[recipeID]
	if !ok {
		return "", domain.ErrNotFound
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	rec.Reviews = append(rec.Reviews, r)
	return r.ID, nil
}

// UpdateStats overwrites a recipe's review count and rating.
func (s *MemoryStore) UpdateStats(ctx context.Context, recipeID string, count int, rating float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.recipes[recipeID]
	if !ok {
		return domain.ErrNotFound
	}
	rec.ReviewCount = count
	rec.Rating = rating
	return nil
}

// CreateAccount stores a new account keyed by lower-cased email.
func (s *MemoryStore) CreateAccount(ctx context.Context, account domain.Account, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(account.Email)
	if _, ok := s.accounts[key]; ok {
		return fmt.Errorf("account %s: %w", account.Email, domain.ErrAlreadyExists)
	}
	if account.ID == "" {
		account.ID = uuid.NewString()
	}
	s.accounts[key] = memAccount{account: account, hash: passwordHash}
	s.log.Info("account created: %s", account.Email)
	return nil
}

// FindAccount returns the account and password hash for an email.
func (s *MemoryStore) FindAccount(ctx context.Context, email string) (*domain.Account, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.accounts[strings.ToLower(email)]
	if !ok {
		return nil, "", domain.ErrNotFound
	}
	acc := a.account
	return &acc, a.hash, nil
}

func cloneRecipe(r *domain.Recipe) *domain.Recipe {
	c := *r
	c.Ingredients = append([]string(nil), r.Ingredients...)
	c.Steps = append([]string(nil), r.Steps...)
	c.Reviews = append([]domain.Review(nil), r.Reviews...)
	return &c
}
