package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/hammamikhairi/recipeit/internal/domain"
	"github.com/hammamikhairi/recipeit/internal/logger"
	"github.com/hammamikhairi/recipeit/internal/seed"
)

// store is the union of ports both local backends implement.
type store interface {
	domain.RecipeSource
	domain.SupermarketSource
	domain.ReviewWriter
	domain.AccountStore
}

func seededStores(t *testing.T) map[string]store {
	t.Helper()
	log := logger.New(logger.LevelOff, nil)

	cat, err := seed.Default()
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	sq, err := OpenSQLite(filepath.Join(t.TempDir(), "recipes.db"), log)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { sq.Close() })
	if err := sq.Load(context.Background(), cat); err != nil {
		t.Fatalf("load sqlite: %v", err)
	}

	return map[string]store{
		"memory": NewSeededMemoryStore(cat, log),
		"sqlite": sq,
	}
}

func TestStoreList(t *testing.T) {
	ctx := context.Background()
	for name, s := range seededStores(t) {
		t.Run(name, func(t *testing.T) {
			recipes, err := s.List(ctx)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(recipes) != 7 {
				t.Fatalf("expected 7 recipes, got %d", len(recipes))
			}
			if recipes[0].ID != "pizza" || recipes[1].ID != "spaghetti" {
				t.Fatalf("insertion order lost: %s, %s", recipes[0].ID, recipes[1].ID)
			}
			if len(recipes[0].Reviews) != 3 {
				t.Fatalf("expected 3 pizza reviews, got %d", len(recipes[0].Reviews))
			}
		})
	}
}

func TestStoreGet(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		id      string
		wantErr error
	}{
		{"pizza", nil},
		{"gado-gado", nil},
		{"nonexistent", domain.ErrNotFound},
	}

	for name, s := range seededStores(t) {
		for _, tt := range tests {
			t.Run(name+"/"+tt.id, func(t *testing.T) {
				r, err := s.Get(ctx, tt.id)
				if tt.wantErr != nil {
					if !errors.Is(err, tt.wantErr) {
						t.Fatalf("expected %v, got %v", tt.wantErr, err)
					}
					return
				}
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if r.ID != tt.id {
					t.Fatalf("expected ID %s, got %s", tt.id, r.ID)
				}
				if len(r.Steps) == 0 || len(r.Ingredients) == 0 {
					t.Fatal("recipe is missing steps or ingredients")
				}
			})
		}
	}
}

func TestStoreGetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	for name, s := range seededStores(t) {
		t.Run(name, func(t *testing.T) {
			r, _ := s.Get(ctx, "pizza")
			r.Steps[0] = "mutated"
			again, _ := s.Get(ctx, "pizza")
			if again.Steps[0] == "mutated" {
				t.Fatal("Get leaked internal state")
			}
		})
	}
}

func TestStoreSearch(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		query string
		count int
	}{
		{"avocado", 2},
		{"ITALIAN", 2},
		{"", 7},
		{"nonexistent-query-xyz", 0},
		{"_", 0},
		{"%", 0},
	}

	for name, s := range seededStores(t) {
		for _, tt := range tests {
			t.Run(name+"/"+tt.query, func(t *testing.T) {
				results, err := s.Search(ctx, tt.query)
				if err != nil {
					t.Fatalf("search: %v", err)
				}
				if len(results) != tt.count {
					t.Fatalf("expected %d results for %q, got %d", tt.count, tt.query, len(results))
				}
			})
		}
	}
}

func TestStoreSupermarkets(t *testing.T) {
	ctx := context.Background()
	for name, s := range seededStores(t) {
		t.Run(name, func(t *testing.T) {
			markets, err := s.ListSupermarkets(ctx)
			if err != nil {
				t.Fatalf("list supermarkets: %v", err)
			}
			if len(markets) != 4 {
				t.Fatalf("expected 4 supermarkets, got %d", len(markets))
			}
			if markets[0].Latitude == 0 || markets[0].Longitude == 0 {
				t.Fatal("coordinates not stored")
			}
		})
	}
}

func TestStoreAddReview(t *testing.T) {
	ctx := context.Background()
	for name, s := range seededStores(t) {
		t.Run(name, func(t *testing.T) {
			rec, err := s.AddReview(ctx, "spaghetti", domain.Review{Reviewer: "Ana", Comment: "ok", Rating: 3})
			if err != nil {
				t.Fatalf("add review: %v", err)
			}
			if rec.ReviewCount != 16 {
				t.Fatalf("expected count 16, got %d", rec.ReviewCount)
			}
			if rec.Rating != 4.5 {
				t.Fatalf("expected rating 4.5, got %v", rec.Rating)
			}

			stored, _ := s.Get(ctx, "spaghetti")
			last := stored.Reviews[len(stored.Reviews)-1]
			if last.Reviewer != "Ana" || last.ID == "" {
				t.Fatalf("review not persisted: %+v", last)
			}
			if stored.ReviewCount != 16 {
				t.Fatalf("stored count not updated: %d", stored.ReviewCount)
			}

			if _, err := s.AddReview(ctx, "missing", domain.Review{Reviewer: "x", Comment: "y", Rating: 5}); !errors.Is(err, domain.ErrNotFound) {
				t.Fatalf("expected ErrNotFound, got %v", err)
			}
		})
	}
}

func TestStoreAccounts(t *testing.T) {
	ctx := context.Background()
	for name, s := range seededStores(t) {
		t.Run(name, func(t *testing.T) {
			acc := domain.Account{Email: "cook@example.com", Username: "cook"}
			if err := s.CreateAccount(ctx, acc, "hash"); err != nil {
				t.Fatalf("create: %v", err)
			}
			err := s.CreateAccount(ctx, domain.Account{Email: "COOK@example.com"}, "other")
			if !errors.Is(err, domain.ErrAlreadyExists) {
				t.Fatalf("expected ErrAlreadyExists, got %v", err)
			}

			got, hash, err := s.FindAccount(ctx, "cook@example.com")
			if err != nil {
				t.Fatalf("find: %v", err)
			}
			if got.Username != "cook" || got.ID == "" || hash != "hash" {
				t.Fatalf("unexpected account: %+v hash=%s", got, hash)
			}

			if _, _, err := s.FindAccount(ctx, "nobody@example.com"); !errors.Is(err, domain.ErrNotFound) {
				t.Fatalf("expected ErrNotFound, got %v", err)
			}
		})
	}
}

func TestMemoryStoreAppendAndUpdateStats(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	cat, _ := seed.Default()
	s := NewSeededMemoryStore(cat, log)
	ctx := context.Background()

	key, err := s.AppendReview(ctx, "pizza", domain.Review{Reviewer: "Bo", Comment: "nice", Rating: 4})
	if err != nil || key == "" {
		t.Fatalf("append: key=%q err=%v", key, err)
	}
	r, _ := s.Get(ctx, "pizza")
	if len(r.Reviews) != 4 || r.ReviewCount != 3 {
		t.Fatalf("append should not touch stats: reviews=%d count=%d", len(r.Reviews), r.ReviewCount)
	}

	if err := s.UpdateStats(ctx, "pizza", 4, 4.6); err != nil {
		t.Fatalf("update stats: %v", err)
	}
	r, _ = s.Get(ctx, "pizza")
	if r.ReviewCount != 4 || r.Rating != 4.6 {
		t.Fatalf("stats not updated: %d %.1f", r.ReviewCount, r.Rating)
	}
	if err := s.UpdateStats(ctx, "nope", 1, 1); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStoreReplace(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	cat, _ := seed.Default()
	s := NewSeededMemoryStore(cat, log)
	ctx := context.Background()

	s.ReplaceRecipes([]domain.Recipe{
		{ID: "b", Name: "Bread"},
		{ID: "a", Name: "Apple pie"},
	})
	recipes, _ := s.List(ctx)
	if len(recipes) != 2 || recipes[0].ID != "b" || recipes[1].ID != "a" {
		t.Fatalf("unexpected recipes after replace: %+v", recipes)
	}
	if _, err := s.Get(ctx, "pizza"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected seeded recipe to be gone, got %v", err)
	}
	markets, _ := s.ListSupermarkets(ctx)
	if len(markets) != len(cat.Supermarkets) {
		t.Fatalf("replacing recipes touched supermarkets: %d", len(markets))
	}

	s.ReplaceSupermarkets(nil)
	markets, _ = s.ListSupermarkets(ctx)
	if len(markets) != 0 {
		t.Fatalf("expected no supermarkets, got %d", len(markets))
	}
	if recipes, _ = s.List(ctx); len(recipes) != 2 {
		t.Fatalf("replacing supermarkets touched recipes: %d", len(recipes))
	}
}

func TestSQLiteEmpty(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "empty.db"), log)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	empty, err := s.Empty(context.Background())
	if err != nil || !empty {
		t.Fatalf("expected empty database, got empty=%v err=%v", empty, err)
	}
}
