package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/hammamikhairi/recipeit/internal/domain"
	"github.com/hammamikhairi/recipeit/internal/logger"
	"github.com/hammamikhairi/recipeit/internal/storage"
)

func newLocal(now time.Time) *LocalProvider {
	log := logger.New(logger.LevelOff, nil)
	return NewLocalProvider(storage.NewMemoryStore(log), log,
		WithBcryptCost(bcrypt.MinCost),
		WithClock(func() time.Time { return now }),
	)
}

func TestLocalRegisterAndLogin(t *testing.T) {
	now := time.Date(2024, 12, 1, 10, 0, 0, 0, time.UTC)
	p := newLocal(now)
	ctx := context.Background()

	acc, err := p.Register(ctx, domain.Registration{
		Email: "cook@example.com", Password: "secret1", ConfirmPassword: "secret1",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if acc.ID == "" || acc.Username != "cook" {
		t.Fatalf("unexpected account: %+v", acc)
	}

	s, err := p.Login(ctx, domain.Credentials{Email: "cook@example.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if s.Token == "" || s.Account.ID != acc.ID {
		t.Fatalf("unexpected session: %+v", s)
	}
	if !s.ExpiresAt.Equal(now.Add(time.Hour)) {
		t.Fatalf("expected expiry in one hour, got %v", s.ExpiresAt)
	}
}

func TestLocalLoginFailures(t *testing.T) {
	p := newLocal(time.Now())
	ctx := context.Background()
	if _, err := p.Register(ctx, domain.Registration{Email: "cook@example.com", Password: "secret1", ConfirmPassword: "secret1"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	tests := []struct {
		name    string
		creds   domain.Credentials
		wantErr error
	}{
		{"wrong password", domain.Credentials{Email: "cook@example.com", Password: "secret2"}, domain.ErrInvalidCredentials},
		{"unknown email", domain.Credentials{Email: "ghost@example.com", Password: "secret1"}, domain.ErrInvalidCredentials},
		{"empty password", domain.Credentials{Email: "cook@example.com"}, domain.ErrMissingField},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := p.Login(ctx, tt.creds); !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestLocalRegisterDuplicate(t *testing.T) {
	p := newLocal(time.Now())
	ctx := context.Background()
	reg := domain.Registration{Email: "cook@example.com", Password: "secret1", ConfirmPassword: "secret1"}
	if _, err := p.Register(ctx, reg); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := p.Register(ctx, reg); !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestLocalRegisterMismatchStoresNothing(t *testing.T) {
	p := newLocal(time.Now())
	ctx := context.Background()
	_, err := p.Register(ctx, domain.Registration{Email: "cook@example.com", Password: "secret1", ConfirmPassword: "other"})
	if !errors.Is(err, domain.ErrPasswordMismatch) {
		t.Fatalf("expected ErrPasswordMismatch, got %v", err)
	}
	if _, _, err := p.store.FindAccount(ctx, "cook@example.com"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("mismatch must not create an account, got %v", err)
	}
}
