package cmd

import (
	"bytes"
	"context"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hammamikhairi/recipeit/internal/emulator"
	"github.com/hammamikhairi/recipeit/internal/logger"
	"github.com/hammamikhairi/recipeit/internal/storage"
)

// run executes the command line with an isolated home and config dir.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("RECIPEIT_TOKEN", "")

	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append(args, "--log-file", "stderr", "--log-level", "off"))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRecipesCommand(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    []string
		notWant []string
	}{
		{
			name: "all recipes",
			args: []string{"recipes"},
			want: []string{"pizza", "Spaghetti", "Ayam Betutu", "Hard"},
		},
		{
			name:    "search",
			args:    []string{"recipes", "--search", "avocado"},
			want:    []string{"Avocado Salad", "Avocado Salsa"},
			notWant: []string{"Pizza"},
		},
		{
			name: "no match",
			args: []string{"recipes", "-s", "lasagne"},
			want: []string{"No recipes found."},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, tt.args...)
			if err != nil {
				t.Fatalf("recipes: %v", err)
			}
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("output missing %q:\n%s", w, out)
				}
			}
			for _, w := range tt.notWant {
				if strings.Contains(out, w) {
					t.Errorf("output should not contain %q:\n%s", w, out)
				}
			}
		})
	}
}

func TestShowCommand(t *testing.T) {
	out, err := run(t, "show", "pizza")
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	for _, w := range []string{"Ingredients", "[ ]", "Method", "7. Slice the pizza and serve hot.", "Reviews (3"} {
		if !strings.Contains(out, w) {
			t.Errorf("output missing %q:\n%s", w, out)
		}
	}

	if _, err := run(t, "show", "nope"); err == nil || !strings.Contains(err.Error(), `no recipe with id "nope"`) {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestUnknownBackend(t *testing.T) {
	if _, err := run(t, "recipes", "--backend", "postgres"); err == nil {
		t.Fatal("expected an error for an unknown backend")
	}
}

func TestSeedMemoryRefused(t *testing.T) {
	if _, err := run(t, "seed"); err == nil {
		t.Fatal("seeding the memory backend should fail")
	}
}

func TestSeedSQLite(t *testing.T) {
	db := filepath.Join(t.TempDir(), "data", "recipes.db")
	t.Setenv("RECIPEIT_SQLITE_PATH", db)

	out, err := run(t, "seed", "--backend", "sqlite")
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if !strings.Contains(out, "Seeded 7 recipes and 4 supermarkets into sqlite") {
		t.Fatalf("unexpected output: %s", out)
	}

	out, err = run(t, "show", "gado-gado", "--backend", "sqlite")
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	if !strings.Contains(out, "Gado") {
		t.Fatalf("expected the seeded recipe, got:\n%s", out)
	}
}

func TestSeedRTDB(t *testing.T) {
	store := storage.NewMemoryStore(logger.New(logger.LevelOff, nil))
	srv := httptest.NewServer(emulator.New(store, logger.New(logger.LevelOff, nil)))
	defer srv.Close()

	if _, err := run(t, "seed", "--backend", "rtdb", "--database-url", srv.URL); err != nil {
		t.Fatalf("seed: %v", err)
	}
	recipes, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(recipes) != 7 || recipes[0].ID != "pizza" {
		t.Fatalf("expected 7 recipes starting with pizza, got %d", len(recipes))
	}

	out, err := run(t, "recipes", "--backend", "rtdb", "--database-url", srv.URL)
	if err != nil {
		t.Fatalf("recipes over rtdb: %v", err)
	}
	if !strings.Contains(out, "Macaroni") {
		t.Fatalf("expected recipes from the emulator, got:\n%s", out)
	}
}
