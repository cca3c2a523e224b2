package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/hammamikhairi/recipeit/internal/domain"
	"github.com/hammamikhairi/recipeit/internal/logger"
)

var _ domain.AuthProvider = (*LocalProvider)(nil)

// LocalOption configures the LocalProvider.
type LocalOption func(*LocalProvider)

// WithBcryptCost sets the hashing cost. Tests use bcrypt.MinCost.
func WithBcryptCost(cost int) LocalOption {
	return func(p *LocalProvider) { p.cost = cost }
}

// WithSessionTTL sets how long issued sessions stay valid.
func WithSessionTTL(d time.Duration) LocalOption {
	return func(p *LocalProvider) { p.ttl = d }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) LocalOption {
	return func(p *LocalProvider) { p.now = now }
}

// LocalProvider keeps bcrypt-hashed accounts in a local store and issues
// random session tokens.
type LocalProvider struct {
	store domain.AccountStore
	cost  int
	ttl   time.Duration
	now   func() time.Time
	log   *logger.Logger
}

// NewLocalProvider creates a provider over an account store.
func NewLocalProvider(store domain.AccountStore, log *logger.Logger, opts ...LocalOption) *LocalProvider {
	p := &LocalProvider{
		store: store,
		cost:  bcrypt.DefaultCost,
		ttl:   time.Hour,
		now:   time.Now,
		log:   log,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Register validates the form, hashes the password and stores the account.
func (p *LocalProvider) Register(ctx context.Context, reg domain.Registration) (*domain.Account, error) {
	if err := ValidateRegistration(reg); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), p.cost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	email := strings.TrimSpace(reg.Email)
	acc := domain.Account{
		ID:       uuid.NewString(),
		Email:    email,
		Username: usernameFor(reg.Username, email),
	}
	if err := p.store.CreateAccount(ctx, acc, string(hash)); err != nil {
		return nil, err
	}

	p.log.Info("auth: registered %s", email)
	return &acc, nil
}

// Login verifies the password and returns a fresh session.
func (p *LocalProvider) Login(ctx context.Context, creds domain.Credentials) (*domain.Session, error) {
	if err := ValidateCredentials(creds); err != nil {
		return nil, err
	}

	acc, hash, err := p.store.FindAccount(ctx, strings.TrimSpace(creds.Email))
	if errors.Is(err, domain.ErrNotFound) {
		p.log.Debug("auth: unknown account %s", creds.Email)
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(creds.Password)); err != nil {
		p.log.Debug("auth: wrong password for %s", creds.Email)
		return nil, domain.ErrInvalidCredentials
	}

	p.log.Info("auth: %s signed in", acc.Email)
	return &domain.Session{
		Token:        uuid.NewString(),
		RefreshToken: uuid.NewString(),
		Account:      *acc,
		ExpiresAt:    p.now().Add(p.ttl),
	}, nil
}
