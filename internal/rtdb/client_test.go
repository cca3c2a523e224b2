package rtdb_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hammamikhairi/recipeit/internal/domain"
	"github.com/hammamikhairi/recipeit/internal/emulator"
	"github.com/hammamikhairi/recipeit/internal/logger"
	"github.com/hammamikhairi/recipeit/internal/rtdb"
	"github.com/hammamikhairi/recipeit/internal/seed"
	"github.com/hammamikhairi/recipeit/internal/storage"
)

func newEmulatedClient(t *testing.T, opts ...rtdb.ClientOption) *rtdb.Client {
	t.Helper()
	log := logger.New(logger.LevelOff, nil)
	cat, err := seed.Default()
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	srv := httptest.NewServer(emulator.New(storage.NewSeededMemoryStore(cat, log), log))
	t.Cleanup(srv.Close)
	return rtdb.NewClient(srv.URL, log, opts...)
}

func TestFetchAllRecipesKeepsOrder(t *testing.T) {
	c := newEmulatedClient(t)

	recipes, err := c.FetchAllRecipes(context.Background())
	if err != nil {
		t.Fatalf("fetch all: %v", err)
	}
	want := []string{"pizza", "spaghetti", "avocado-salad", "gado-gado"}
	if len(recipes) < len(want) {
		t.Fatalf("expected at least %d recipes, got %d", len(want), len(recipes))
	}
	for i, id := range want {
		if recipes[i].ID != id {
			t.Fatalf("position %d: expected %s, got %s", i, id, recipes[i].ID)
		}
	}
}

func TestFetchRecipe(t *testing.T) {
	c := newEmulatedClient(t)
	ctx := context.Background()

	tests := []struct {
		id      string
		wantErr error
	}{
		{"pizza", nil},
		{"nonexistent", domain.ErrNotFound},
		{"", domain.ErrMissingID},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			r, err := c.FetchRecipe(ctx, tt.id)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(r.Steps) != 7 || len(r.Reviews) != 3 {
				t.Fatalf("expected 7 steps and 3 reviews, got %d and %d", len(r.Steps), len(r.Reviews))
			}
		})
	}
}

func TestSearchFiltersLocally(t *testing.T) {
	c := newEmulatedClient(t)
	results, err := c.Search(context.Background(), "Avocado")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 avocado recipes, got %d", len(results))
	}
}

func TestListSupermarkets(t *testing.T) {
	c := newEmulatedClient(t)
	markets, err := c.ListSupermarkets(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(markets) != 4 || markets[0].ID != "superindo-pandanaran" {
		t.Fatalf("unexpected supermarkets: %+v", markets)
	}
}

func TestAddReviewUpdatesStats(t *testing.T) {
	c := newEmulatedClient(t)
	ctx := context.Background()

	rec, err := c.AddReview(ctx, "spaghetti", domain.Review{Reviewer: "Ana", Comment: "ok", Rating: 3})
	if err != nil {
		t.Fatalf("add review: %v", err)
	}
	if rec.ReviewCount != 16 || rec.Rating != 4.5 {
		t.Fatalf("expected 4.5 over 16, got %.1f over %d", rec.Rating, rec.ReviewCount)
	}

	again, err := c.FetchRecipe(ctx, "spaghetti")
	if err != nil {
		t.Fatalf("refetch: %v", err)
	}
	if again.ReviewCount != 16 || again.Rating != 4.5 {
		t.Fatalf("stats not stored: %.1f over %d", again.Rating, again.ReviewCount)
	}
	last := again.Reviews[len(again.Reviews)-1]
	if last.Reviewer != "Ana" || last.ID == "" || last.CreatedAt.IsZero() {
		t.Fatalf("review not stored: %+v", last)
	}

	if _, err := c.AddReview(ctx, "missing", domain.Review{Reviewer: "x", Comment: "y", Rating: 5}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUploadReplacesCatalogue(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	srv := httptest.NewServer(emulator.New(storage.NewMemoryStore(log), log))
	defer srv.Close()
	c := rtdb.NewClient(srv.URL, log)
	ctx := context.Background()

	empty, err := c.FetchAllRecipes(ctx)
	if err != nil || len(empty) != 0 {
		t.Fatalf("expected empty catalogue, got %d (%v)", len(empty), err)
	}

	cat, _ := seed.Default()
	if err := c.Upload(ctx, cat.Recipes, cat.Supermarkets); err != nil {
		t.Fatalf("upload: %v", err)
	}
	recipes, _ := c.FetchAllRecipes(ctx)
	if len(recipes) != len(cat.Recipes) || recipes[0].ID != cat.Recipes[0].ID {
		t.Fatalf("upload lost recipes or order: %d", len(recipes))
	}
}

func TestUploadDropsStaleRecords(t *testing.T) {
	c := newEmulatedClient(t)
	ctx := context.Background()

	only := []domain.Recipe{{ID: "only", Name: "Only Soup", Description: "Just this one."}}
	if err := c.Upload(ctx, only, nil); err != nil {
		t.Fatalf("upload: %v", err)
	}

	recipes, err := c.FetchAllRecipes(ctx)
	if err != nil {
		t.Fatalf("fetch all: %v", err)
	}
	if len(recipes) != 1 || recipes[0].ID != "only" {
		t.Fatalf("expected only the uploaded recipe, got %+v", recipes)
	}
	if _, err := c.FetchRecipe(ctx, "pizza"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected seeded recipe to be gone, got %v", err)
	}

	markets, err := c.ListSupermarkets(ctx)
	if err != nil {
		t.Fatalf("supermarkets: %v", err)
	}
	if len(markets) != 0 {
		t.Fatalf("expected no supermarkets, got %d", len(markets))
	}
}

func TestSkipsInvalidRecords(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"b":{"name":"Bread"},"bad":{"rating":5},"a":{"name":"Apple pie"}}`))
	}))
	defer srv.Close()

	c := rtdb.NewClient(srv.URL, logger.New(logger.LevelOff, nil))
	recipes, err := c.FetchAllRecipes(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(recipes) != 2 || recipes[0].ID != "b" || recipes[1].ID != "a" {
		t.Fatalf("unexpected recipes: %+v", recipes)
	}
}

func TestAuthTokenAndPermissionDenied(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.URL.Query().Get("auth")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"Permission denied"}`))
	}))
	defer srv.Close()

	c := rtdb.NewClient(srv.URL, logger.New(logger.LevelOff, nil), rtdb.WithToken(func() string { return "tok en" }))
	_, err := c.FetchAllRecipes(context.Background())
	if !rtdb.IsPermissionDenied(err) {
		t.Fatalf("expected permission denied, got %v", err)
	}
	if gotAuth != "tok en" {
		t.Fatalf("expected auth token to be sent, got %q", gotAuth)
	}
	var apiErr *rtdb.APIError
	if !errors.As(err, &apiErr) || apiErr.Message != "Permission denied" {
		t.Fatalf("expected provider message verbatim, got %v", err)
	}
}

func TestContextCancellation(t *testing.T) {
	c := newEmulatedClient(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.FetchRecipe(ctx, "pizza"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
