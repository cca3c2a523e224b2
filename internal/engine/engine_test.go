package engine

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/hammamikhairi/recipeit/internal/auth"
	"github.com/hammamikhairi/recipeit/internal/domain"
	"github.com/hammamikhairi/recipeit/internal/logger"
	"github.com/hammamikhairi/recipeit/internal/maps"
	"github.com/hammamikhairi/recipeit/internal/seed"
	"github.com/hammamikhairi/recipeit/internal/storage"
)

type fakeLinker struct{ opened []string }

func (f *fakeLinker) URL(p maps.Point) string {
	return maps.NewLinker(logger.New(logger.LevelOff, nil)).URL(p)
}

func (f *fakeLinker) Open(p maps.Point) (string, error) {
	f.opened = append(f.opened, f.URL(p))
	return "Opened " + f.URL(p), nil
}

func (f *fakeLinker) Copy(p maps.Point) (string, error) {
	return "Copied " + f.URL(p), nil
}

type fakeNarrator struct {
	said    []string
	stopped int
}

func (f *fakeNarrator) Speak(ctx context.Context, text string) error {
	f.said = append(f.said, text)
	return nil
}

func (f *fakeNarrator) Stop() { f.stopped++ }

type fixture struct {
	eng      *Engine
	store    *storage.MemoryStore
	linker   *fakeLinker
	narrator *fakeNarrator
	sessions *auth.CredentialStore
}

func setupEngine(t *testing.T, opts ...Option) (*fixture, context.Context) {
	t.Helper()
	log := logger.New(logger.LevelOff, nil)
	cat, err := seed.Default()
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	store := storage.NewSeededMemoryStore(cat, log)
	f := &fixture{
		store:    store,
		linker:   &fakeLinker{},
		narrator: &fakeNarrator{},
		sessions: auth.NewCredentialStore(filepath.Join(t.TempDir(), "credentials.json")),
	}
	f.eng = New(Providers{
		Recipes:      store,
		Supermarkets: store,
		Reviews:      store,
		Auth:         auth.NewLocalProvider(store, log, auth.WithBcryptCost(bcrypt.MinCost)),
		Sessions:     f.sessions,
		Maps:         f.linker,
		Narrator:     f.narrator,
	}, log, opts...)
	return f, context.Background()
}

func TestHome(t *testing.T) {
	f, ctx := setupEngine(t)

	tests := []struct {
		name        string
		showAll     bool
		wantShown   int
		wantHasMore bool
	}{
		{"collapsed", false, 4, true},
		{"view more", true, 7, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			feed, err := f.eng.Home(ctx, tt.showAll)
			if err != nil {
				t.Fatalf("home: %v", err)
			}
			if len(feed.Recipes) != tt.wantShown {
				t.Fatalf("expected %d recipes, got %d", tt.wantShown, len(feed.Recipes))
			}
			if feed.HasMore() != tt.wantHasMore {
				t.Fatalf("expected HasMore=%v", tt.wantHasMore)
			}
			if feed.Recipes[0].ID != "pizza" {
				t.Fatalf("expected pizza first, got %s", feed.Recipes[0].ID)
			}
			if len(feed.Suggestions) != 3 {
				t.Fatalf("expected 3 suggestions, got %d", len(feed.Suggestions))
			}
		})
	}
}

func TestHomeSuggestionsOrderedByRating(t *testing.T) {
	f, ctx := setupEngine(t)
	feed, _ := f.eng.Home(ctx, false)

	// Outside the first page: salsa 4.4, macaroni 4.2, ayam betutu 4.7.
	want := []string{"ayam-betutu", "avocado-salsa", "macaroni-cheese"}
	for i, id := range want {
		if feed.Suggestions[i].ID != id {
			t.Fatalf("suggestion %d: expected %s, got %s", i, id, feed.Suggestions[i].ID)
		}
	}
}

func TestHomeSmallCatalogue(t *testing.T) {
	f, ctx := setupEngine(t, WithPageSize(10))
	feed, _ := f.eng.Home(ctx, false)
	if feed.HasMore() || len(feed.Suggestions) != 0 {
		t.Fatalf("nothing should be hidden: hasMore=%v suggestions=%d", feed.HasMore(), len(feed.Suggestions))
	}
}

func TestOpenRecipe(t *testing.T) {
	f, ctx := setupEngine(t)

	tests := []struct {
		name    string
		id      string
		wantErr error
	}{
		{"pizza", "pizza", nil},
		{"missing id", "", domain.ErrMissingID},
		{"not found", "nonexistent", domain.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := f.eng.OpenRecipe(ctx, tt.id)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(d.Checklist) != 6 || d.Checklist[0].Checked {
				t.Fatalf("checklist not initialized: %+v", d.Checklist)
			}
			if d.Pager.Steps() != 7 || d.Progress() != 0 {
				t.Fatalf("pager not initialized: steps=%d progress=%v", d.Pager.Steps(), d.Progress())
			}
			if len(d.Reviews) != 3 || d.Reviews[0].Stars != "★★★★★" {
				t.Fatalf("reviews not rendered: %+v", d.Reviews)
			}
		})
	}
}

func TestDetailInteractions(t *testing.T) {
	f, ctx := setupEngine(t)
	d, err := f.eng.OpenRecipe(ctx, "pizza")
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	d.ToggleIngredient("2")
	d.ToggleIngredient("5")
	d.ToggleIngredient("2")
	if checked, total := d.Checked(); checked != 1 || total != 6 {
		t.Fatalf("expected 1 of 6 checked, got %d of %d", checked, total)
	}

	for d.Pager.Next() {
	}
	if d.Progress() != 100 {
		t.Fatalf("expected 100%% on the last page, got %v", d.Progress())
	}
	step, ok := d.CurrentStep()
	if !ok || step != "Slice the pizza and serve hot." {
		t.Fatalf("unexpected last step %q", step)
	}

	if err := f.eng.Narrate(ctx, d); err != nil {
		t.Fatalf("narrate: %v", err)
	}
	if len(f.narrator.said) != 1 || f.narrator.said[0] != "Step 7. Slice the pizza and serve hot." {
		t.Fatalf("unexpected narration: %v", f.narrator.said)
	}
}

func TestReopenRecipeStartsFresh(t *testing.T) {
	f, ctx := setupEngine(t)
	d, err := f.eng.OpenRecipe(ctx, "pizza")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	d.ToggleIngredient("1")
	d.ToggleIngredient("3")
	d.Pager.Next()

	again, err := f.eng.OpenRecipe(ctx, "pizza")
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if checked, _ := again.Checked(); checked != 0 {
		t.Fatalf("expected a fresh checklist, got %d checked", checked)
	}
	if again.Progress() != 0 {
		t.Fatalf("expected the first step, got %v%%", again.Progress())
	}
	if checked, _ := d.Checked(); checked != 2 {
		t.Fatalf("reopening must not touch the earlier detail, got %d checked", checked)
	}
}

func TestSubmitReview(t *testing.T) {
	f, ctx := setupEngine(t)
	d, _ := f.eng.OpenRecipe(ctx, "spaghetti")
	d.ToggleIngredient("1")

	d.Composer.Text = ""
	if err := f.eng.SubmitReview(ctx, d); !errors.Is(err, domain.ErrEmptyReview) {
		t.Fatalf("expected ErrEmptyReview, got %v", err)
	}

	d.Composer.Text = "  Solid weeknight dinner  "
	d.Composer.SetRating(3)
	if err := f.eng.SubmitReview(ctx, d); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if d.Recipe.ReviewCount != 16 || d.Recipe.Rating != 4.5 {
		t.Fatalf("expected 4.5 over 16, got %.1f over %d", d.Recipe.Rating, d.Recipe.ReviewCount)
	}
	last := d.Reviews[len(d.Reviews)-1]
	if last.Reviewer != "Anonymous" || last.Comment != "Solid weeknight dinner" || last.Stars != "★★★" {
		t.Fatalf("unexpected row: %+v", last)
	}
	if d.Composer.Text != "" {
		t.Fatal("composer should reset after submit")
	}
	if checked, _ := d.Checked(); checked != 1 {
		t.Fatal("checklist should survive a review refresh")
	}
}

func TestSubmitReviewUsesSignedInName(t *testing.T) {
	f, ctx := setupEngine(t)
	if _, err := f.eng.Register(ctx, domain.Registration{Username: "Carlo", Email: "carlo@example.com", Password: "secret1", ConfirmPassword: "secret1"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := f.eng.Login(ctx, domain.Credentials{Email: "carlo@example.com", Password: "secret1"}); err != nil {
		t.Fatalf("login: %v", err)
	}

	d, _ := f.eng.OpenRecipe(ctx, "pizza")
	d.Composer.Text = "Crispy!"
	if err := f.eng.SubmitReview(ctx, d); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if got := d.Reviews[len(d.Reviews)-1].Reviewer; got != "Carlo" {
		t.Fatalf("expected reviewer Carlo, got %s", got)
	}
}

func TestAuthFlow(t *testing.T) {
	f, ctx := setupEngine(t)

	_, err := f.eng.Register(ctx, domain.Registration{Email: "a@b.co", Password: "secret1", ConfirmPassword: "nope"})
	if !errors.Is(err, domain.ErrPasswordMismatch) {
		t.Fatalf("expected ErrPasswordMismatch, got %v", err)
	}
	if _, err := f.eng.Login(ctx, domain.Credentials{Email: "a@b.co", Password: "secret1"}); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("login must verify credentials, got %v", err)
	}

	if _, err := f.eng.Register(ctx, domain.Registration{Email: "a@b.co", Password: "secret1", ConfirmPassword: "secret1"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if f.eng.Session() != nil {
		t.Fatal("register must not sign in")
	}
	s, err := f.eng.Login(ctx, domain.Credentials{Email: "a@b.co", Password: "secret1"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if f.eng.Token() != s.Token {
		t.Fatal("token not kept")
	}

	// A fresh engine over the same credential file picks the session up.
	log := logger.New(logger.LevelOff, nil)
	other := New(Providers{Recipes: f.store, Sessions: f.sessions}, log)
	if !other.Restore() || other.Token() != s.Token {
		t.Fatal("session not restored")
	}

	if err := f.eng.Logout(); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if f.eng.Session() != nil || f.narrator.stopped == 0 {
		t.Fatal("logout should drop the session and stop narration")
	}
	if New(Providers{Recipes: f.store, Sessions: f.sessions}, log).Restore() {
		t.Fatal("logout should clear the saved session")
	}
}

func TestSupermarkets(t *testing.T) {
	f, ctx := setupEngine(t)

	tests := []struct {
		query string
		want  int
	}{
		{"", 4},
		{"superindo", 1},
		{"MAJAPAHIT", 1},
		{"jakarta", 0},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got, err := f.eng.Supermarkets(ctx, tt.query)
			if err != nil {
				t.Fatalf("supermarkets: %v", err)
			}
			if len(got) != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, len(got))
			}
		})
	}
}

func TestMapLinks(t *testing.T) {
	f, _ := setupEngine(t)
	m := domain.Supermarket{Name: "Test", Latitude: -6.99, Longitude: 110.42}

	if got := f.eng.MapURL(m); got != "https://www.google.com/maps?q=-6.99,110.42" {
		t.Fatalf("unexpected url %s", got)
	}
	if _, err := f.eng.OpenMap(m); err != nil || len(f.linker.opened) != 1 {
		t.Fatalf("open: %v (%d)", err, len(f.linker.opened))
	}
}

func TestMissingProviders(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	eng := New(Providers{Recipes: storage.NewMemoryStore(log)}, log)
	ctx := context.Background()

	if _, err := eng.Supermarkets(ctx, ""); !errors.Is(err, domain.ErrNotImplemented) {
		t.Fatalf("expected ErrNotImplemented, got %v", err)
	}
	if _, err := eng.Login(ctx, domain.Credentials{}); !errors.Is(err, domain.ErrNotImplemented) {
		t.Fatalf("expected ErrNotImplemented, got %v", err)
	}
	if eng.Restore() {
		t.Fatal("no session store, nothing to restore")
	}
}

// blockingSource never answers until its context is cancelled.
type blockingSource struct{ domain.RecipeSource }

func (blockingSource) Get(ctx context.Context, id string) (*domain.Recipe, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestLeavingScreenCancelsFetch(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	eng := New(Providers{Recipes: blockingSource{}}, log)

	detail := eng.Screens().Enter(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := eng.OpenRecipe(detail.Ctx, "pizza")
		done <- err
	}()

	home := eng.Screens().Enter(context.Background())

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("fetch was not cancelled")
	}
	if eng.Screens().Current(detail.Token) {
		t.Fatal("stale token must not be current")
	}
	if !eng.Screens().Current(home.Token) {
		t.Fatal("new screen should be current")
	}

	eng.Screens().Leave()
	if eng.Screens().Current(home.Token) {
		t.Fatal("no screen should be current after Leave")
	}
}
