package auth

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hammamikhairi/recipeit/internal/domain"
)

func newTestStore(t *testing.T, env map[string]string) *CredentialStore {
	t.Helper()
	c := NewCredentialStore(filepath.Join(t.TempDir(), "nested", "credentials.json"))
	c.getenv = func(k string) string { return env[k] }
	return c
}

func TestCredentialStoreRoundTrip(t *testing.T) {
	c := newTestStore(t, nil)

	if _, err := c.Load(); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound before save, got %v", err)
	}

	in := &domain.Session{
		Token:     "tok",
		Account:   domain.Account{ID: "u1", Email: "a@b.co", Username: "a"},
		ExpiresAt: time.Now().Add(time.Hour).Truncate(time.Second),
	}
	if err := c.Save(in); err != nil {
		t.Fatalf("save: %v", err)
	}

	info, err := os.Stat(c.Path())
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("expected 0600, got %o", info.Mode().Perm())
	}

	out, err := c.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if out.Token != "tok" || out.Account.Email != "a@b.co" || !out.ExpiresAt.Equal(in.ExpiresAt) {
		t.Fatalf("unexpected session: %+v", out)
	}

	if err := c.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if err := c.Clear(); err != nil {
		t.Fatalf("second clear: %v", err)
	}
	if _, err := c.Load(); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after clear, got %v", err)
	}
}

func TestCredentialStoreExpired(t *testing.T) {
	c := newTestStore(t, nil)
	if err := c.Save(&domain.Session{Token: "old", ExpiresAt: time.Now().Add(-time.Minute)}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := c.Load(); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for expired session, got %v", err)
	}
}

func TestCredentialStoreEnvOverride(t *testing.T) {
	c := newTestStore(t, map[string]string{TokenEnv: "from-env"})
	if err := c.Save(&domain.Session{Token: "from-file"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	s, err := c.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if s.Token != "from-env" {
		t.Fatalf("expected env token, got %q", s.Token)
	}
}

func TestCredentialStoreEnvTokenKeepsAccount(t *testing.T) {
	c := newTestStore(t, map[string]string{TokenEnv: "from-env"})
	err := c.Save(&domain.Session{
		Token:   "from-file",
		Account: domain.Account{ID: "u1", Email: "ana@example.com", Username: "ana"},
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	s, err := c.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if s.Token != "from-env" {
		t.Fatalf("expected env token, got %q", s.Token)
	}
	if s.Account.ID != "u1" || s.Account.Email != "ana@example.com" || s.Account.Username != "ana" {
		t.Fatalf("expected the saved account, got %+v", s.Account)
	}

	if err := c.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	s, err = c.Load()
	if err != nil || s.Token != "from-env" || s.Account.Username != "" {
		t.Fatalf("expected a bare env session without a file, got %+v (%v)", s, err)
	}
}
