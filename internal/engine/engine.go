// Package engine is the screen controller behind the terminal UI. It
// composes the data, review, auth, map and narration providers into the
// operations each screen performs, and owns the signed-in session.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/hammamikhairi/recipeit/internal/domain"
	"github.com/hammamikhairi/recipeit/internal/logger"
	"github.com/hammamikhairi/recipeit/internal/maps"
)

// DefaultPageSize is how many recipes the home feed shows before
// "View More".
const DefaultPageSize = 4

// SuggestionCount caps the "Maybe you like" row.
const SuggestionCount = 3

// TrendingSearches are the shortcut chips on the home screen.
var TrendingSearches = []string{"Burgers", "Brunch", "Breakfast", "Pizza", "Chef"}

// SessionStore persists the signed-in session between runs.
type SessionStore interface {
	Save(s *domain.Session) error
	Load() (*domain.Session, error)
	Clear() error
}

// MapLinker turns a location into an external map link.
type MapLinker interface {
	URL(p maps.Point) string
	Open(p maps.Point) (string, error)
	Copy(p maps.Point) (string, error)
}

// Providers are the collaborators the engine drives.
type Providers struct {
	Recipes      domain.RecipeSource
	Supermarkets domain.SupermarketSource
	Reviews      domain.ReviewWriter
	Auth         domain.AuthProvider
	Sessions     SessionStore
	Maps         MapLinker
	Narrator     domain.Narrator
}

// Option configures the engine.
type Option func(*Engine)

// WithPageSize sets how many recipes the collapsed home feed shows.
func WithPageSize(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.pageSize = n
		}
	}
}

// WithPageWidth sets the width of one step page in the carousel.
func WithPageWidth(w float64) Option {
	return func(e *Engine) {
		if w > 0 {
			e.pageWidth = w
		}
	}
}

// Engine serves the screens. Safe for concurrent use.
type Engine struct {
	p         Providers
	log       *logger.Logger
	pageSize  int
	pageWidth float64
	screens   *Screens

	mu      sync.RWMutex
	session *domain.Session
}

// New creates an engine. Recipes is required; missing optional providers
// make the matching operations fail with ErrNotImplemented.
func New(p Providers, log *logger.Logger, opts ...Option) *Engine {
	e := &Engine{
		p:         p,
		log:       log,
		pageSize:  DefaultPageSize,
		pageWidth: 60,
		screens:   NewScreens(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Screens returns the screen token tracker.
func (e *Engine) Screens() *Screens { return e.screens }

// ── Home ─────────────────────────────────────────────────────────

// Feed is what the home screen renders.
type Feed struct {
	Recipes     []domain.RecipeSummary
	Total       int
	ShowAll     bool
	Suggestions []domain.RecipeSummary
}

// HasMore reports whether "View More" would reveal more recipes.
func (f *Feed) HasMore() bool {
	return !f.ShowAll && f.Total > len(f.Recipes)
}

// Home returns the first page of recipes, or all of them when showAll is
// set, plus suggestions from outside the first page.
func (e *Engine) Home(ctx context.Context, showAll bool) (*Feed, error) {
	all, err := e.p.Recipes.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching recipes: %w", err)
	}

	feed := &Feed{Total: len(all), ShowAll: showAll}
	shown := len(all)
	if !showAll && shown > e.pageSize {
		shown = e.pageSize
	}
	for i := 0; i < shown; i++ {
		feed.Recipes = append(feed.Recipes, all[i].Summary())
	}

	if len(all) > e.pageSize {
		rest := make([]domain.RecipeSummary, 0, len(all)-e.pageSize)
		for i := e.pageSize; i < len(all); i++ {
			rest = append(rest, all[i].Summary())
		}
		sort.SliceStable(rest, func(i, j int) bool { return rest[i].Rating > rest[j].Rating })
		if len(rest) > SuggestionCount {
			rest = rest[:SuggestionCount]
		}
		feed.Suggestions = rest
	}

	e.log.Debug("home: %d of %d recipes, %d suggestions", len(feed.Recipes), feed.Total, len(feed.Suggestions))
	return feed, nil
}

// Search matches recipes by name, description or category.
func (e *Engine) Search(ctx context.Context, query string) ([]domain.RecipeSummary, error) {
	res, err := e.p.Recipes.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("searching recipes: %w", err)
	}
	e.log.Debug("search %q: %d results", query, len(res))
	return res, nil
}

// ── Detail ───────────────────────────────────────────────────────

// OpenRecipe loads a recipe and builds its detail screen state.
func (e *Engine) OpenRecipe(ctx context.Context, id string) (*Detail, error) {
	if strings.TrimSpace(id) == "" {
		return nil, domain.ErrMissingID
	}
	r, err := e.p.Recipes.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("opening recipe %s: %w", id, err)
	}
	e.log.Info("opened recipe %s (%d ingredients, %d steps)", r.ID, len(r.Ingredients), len(r.Steps))
	return newDetail(r, e.pageWidth), nil
}

// SubmitReview sends the detail's draft review as the signed-in user and
// refreshes the detail from the writer's result.
func (e *Engine) SubmitReview(ctx context.Context, d *Detail) error {
	if e.p.Reviews == nil {
		return domain.ErrNotImplemented
	}
	reviewer := ""
	if s := e.Session(); s != nil {
		reviewer = s.Account.Username
	}
	updated, err := d.Composer.Submit(ctx, e.p.Reviews, d.Recipe.ID, reviewer)
	if err != nil {
		return err
	}
	d.refresh(updated)
	e.log.Info("review submitted for %s, now %.1f over %d", updated.ID, updated.Rating, updated.ReviewCount)
	return nil
}

// Narrate reads the detail's current step aloud. Blocks while speaking.
func (e *Engine) Narrate(ctx context.Context, d *Detail) error {
	if e.p.Narrator == nil {
		return domain.ErrNotImplemented
	}
	step, ok := d.CurrentStep()
	if !ok {
		return nil
	}
	return e.p.Narrator.Speak(ctx, fmt.Sprintf("Step %d. %s", d.Pager.Page()+1, step))
}

// StopNarration interrupts any line being read.
func (e *Engine) StopNarration() {
	if e.p.Narrator != nil {
		e.p.Narrator.Stop()
	}
}

// ── Map ──────────────────────────────────────────────────────────

// Supermarkets returns the store locations whose name or address contains
// query, case-insensitively. An empty query returns all of them.
func (e *Engine) Supermarkets(ctx context.Context, query string) ([]domain.Supermarket, error) {
	if e.p.Supermarkets == nil {
		return nil, domain.ErrNotImplemented
	}
	all, err := e.p.Supermarkets.ListSupermarkets(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching supermarkets: %w", err)
	}
	return FilterSupermarkets(all, query), nil
}

// FilterSupermarkets keeps the locations matching query.
func FilterSupermarkets(all []domain.Supermarket, query string) []domain.Supermarket {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return all
	}
	var out []domain.Supermarket
	for _, m := range all {
		if strings.Contains(strings.ToLower(m.Name), q) || strings.Contains(strings.ToLower(m.Address), q) {
			out = append(out, m)
		}
	}
	return out
}

// MapURL returns the external map link for a supermarket.
func (e *Engine) MapURL(m domain.Supermarket) string {
	if e.p.Maps == nil {
		return ""
	}
	return e.p.Maps.URL(maps.Of(m))
}

// OpenMap hands the supermarket's link to the platform URL handler.
func (e *Engine) OpenMap(m domain.Supermarket) (string, error) {
	if e.p.Maps == nil {
		return "", domain.ErrNotImplemented
	}
	return e.p.Maps.Open(maps.Of(m))
}

// CopyMap puts the supermarket's link on the clipboard.
func (e *Engine) CopyMap(m domain.Supermarket) (string, error) {
	if e.p.Maps == nil {
		return "", domain.ErrNotImplemented
	}
	return e.p.Maps.Copy(maps.Of(m))
}

// ── Auth ─────────────────────────────────────────────────────────

// Register creates an account. It does not sign the user in.
func (e *Engine) Register(ctx context.Context, reg domain.Registration) (*domain.Account, error) {
	if e.p.Auth == nil {
		return nil, domain.ErrNotImplemented
	}
	acc, err := e.p.Auth.Register(ctx, reg)
	if err != nil {
		return nil, err
	}
	e.log.Info("registered %s", acc.Email)
	return acc, nil
}

// Login verifies the credentials and keeps the resulting session.
func (e *Engine) Login(ctx context.Context, creds domain.Credentials) (*domain.Session, error) {
	if e.p.Auth == nil {
		return nil, domain.ErrNotImplemented
	}
	s, err := e.p.Auth.Login(ctx, creds)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.session = s
	e.mu.Unlock()

	if e.p.Sessions != nil {
		if err := e.p.Sessions.Save(s); err != nil {
			e.log.Warn("could not persist session: %v", err)
		}
	}
	return s, nil
}

// Restore loads a saved session. It reports whether one was found.
func (e *Engine) Restore() bool {
	if e.p.Sessions == nil {
		return false
	}
	s, err := e.p.Sessions.Load()
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			e.log.Warn("could not load saved session: %v", err)
		}
		return false
	}

	e.mu.Lock()
	e.session = s
	e.mu.Unlock()
	e.log.Info("restored session for %s", s.Account.Email)
	return true
}

// Logout forgets the session in memory and on disk.
func (e *Engine) Logout() error {
	e.mu.Lock()
	e.session = nil
	e.mu.Unlock()

	e.StopNarration()
	if e.p.Sessions != nil {
		return e.p.Sessions.Clear()
	}
	return nil
}

// Session returns the signed-in session, or nil.
func (e *Engine) Session() *domain.Session {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.session
}

// Token returns the signed-in session's token, or "". It is passed to
// the database client as its token source.
func (e *Engine) Token() string {
	if s := e.Session(); s != nil {
		return s.Token
	}
	return ""
}
