package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hammamikhairi/recipeit/internal/auth"
	"github.com/hammamikhairi/recipeit/internal/config"
	"github.com/hammamikhairi/recipeit/internal/domain"
	"github.com/hammamikhairi/recipeit/internal/engine"
	"github.com/hammamikhairi/recipeit/internal/maps"
	"github.com/hammamikhairi/recipeit/internal/rtdb"
	"github.com/hammamikhairi/recipeit/internal/seed"
	"github.com/hammamikhairi/recipeit/internal/speech"
	"github.com/hammamikhairi/recipeit/internal/storage"
)

// backend is the data and auth providers of the configured backend.
type backend struct {
	recipes domain.RecipeSource
	markets domain.SupermarketSource
	reviews domain.ReviewWriter
	auth    domain.AuthProvider
	close   func() error
}

// openBackend connects to the configured backend. token is passed to the
// realtime database client as its auth source.
func (rt *runtime) openBackend(ctx context.Context, token func() string) (*backend, error) {
	cfg := rt.cfg
	switch cfg.Backend {
	case config.BackendRTDB:
		client := rtdb.NewClient(cfg.DatabaseURL, rt.log.Named("rtdb"), rtdb.WithToken(token))
		return &backend{
			recipes: client,
			markets: client,
			reviews: client,
			auth: auth.NewFirebaseProvider(cfg.APIKey, rt.log.Named("auth"),
				auth.WithIdentityURL(cfg.IdentityURL)),
			close: func() error { return nil },
		}, nil

	case config.BackendSQLite:
		store, err := openSQLite(rt)
		if err != nil {
			return nil, err
		}
		empty, err := store.Empty(ctx)
		if err != nil {
			store.Close()
			return nil, err
		}
		if empty {
			cat, err := seed.Default()
			if err != nil {
				store.Close()
				return nil, err
			}
			if err := store.Load(ctx, cat); err != nil {
				store.Close()
				return nil, err
			}
			rt.log.Info("sqlite: seeded %s with %d recipes", cfg.SQLitePath, len(cat.Recipes))
		}
		return &backend{
			recipes: store,
			markets: store,
			reviews: store,
			auth:    auth.NewLocalProvider(store, rt.log.Named("auth")),
			close:   store.Close,
		}, nil

	default:
		cat, err := seed.Default()
		if err != nil {
			return nil, err
		}
		store := storage.NewSeededMemoryStore(cat, rt.log.Named("memory"))
		return &backend{
			recipes: store,
			markets: store,
			reviews: store,
			auth:    auth.NewLocalProvider(store, rt.log.Named("auth")),
			close:   func() error { return nil },
		}, nil
	}
}

func openSQLite(rt *runtime) (*storage.SQLiteStore, error) {
	if dir := filepath.Dir(rt.cfg.SQLitePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database dir: %w", err)
		}
	}
	return storage.OpenSQLite(rt.cfg.SQLitePath, rt.log.Named("sqlite"))
}

// newEngine wires the engine over the configured backend. The returned
// func releases the backend.
func (rt *runtime) newEngine(ctx context.Context) (*engine.Engine, func(), error) {
	var eng *engine.Engine
	token := func() string {
		if eng == nil {
			return ""
		}
		return eng.Token()
	}

	be, err := rt.openBackend(ctx, token)
	if err != nil {
		return nil, nil, err
	}

	var sessions engine.SessionStore
	if path, err := auth.DefaultCredentialPath(); err != nil {
		rt.log.Warn("sessions will not be remembered: %v", err)
	} else {
		sessions = auth.NewCredentialStore(path)
	}

	cfg := rt.cfg
	eng = engine.New(engine.Providers{
		Recipes:      be.recipes,
		Supermarkets: be.markets,
		Reviews:      be.reviews,
		Auth:         be.auth,
		Sessions:     sessions,
		Maps:         maps.NewLinker(rt.log.Named("maps"), maps.WithBaseURL(cfg.Maps.BaseURL)),
		Narrator: speech.FromConfig(speech.Config{
			Key:      cfg.Speech.Key,
			Region:   cfg.Speech.Region,
			Voice:    cfg.Speech.Voice,
			CacheDir: cfg.Speech.CacheDir,
		}, rt.log.Named("speech")),
	}, rt.log, engine.WithPageSize(cfg.Home.PageSize))

	return eng, func() {
		if err := be.close(); err != nil {
			rt.log.Warn("closing backend: %v", err)
		}
	}, nil
}
