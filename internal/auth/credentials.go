package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hammamikhairi/recipeit/internal/domain"
)

// TokenEnv overrides any stored session when set.
const TokenEnv = "RECIPEIT_TOKEN"

// DefaultCredentialPath returns ~/.recipeit/credentials.json.
func DefaultCredentialPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locating home directory: %w", err)
	}
	return filepath.Join(home, ".recipeit", "credentials.json"), nil
}

type credentialFile struct {
	Token        string    `json:"token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	AccountID    string    `json:"account_id,omitempty"`
	Email        string    `json:"email,omitempty"`
	Username     string    `json:"username,omitempty"`
	ExpiresAt    time.Time `json:"expires_at,omitempty"`
}

// CredentialStore persists the signed-in session between runs.
type CredentialStore struct {
	path   string
	getenv func(string) string
}

// NewCredentialStore stores the session at path.
func NewCredentialStore(path string) *CredentialStore {
	return &CredentialStore{path: path, getenv: os.Getenv}
}

// Path returns the file location.
func (c *CredentialStore) Path() string { return c.path }

// Save writes the session with owner-only permissions.
func (c *CredentialStore) Save(s *domain.Session) error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0o700); err != nil {
		return fmt.Errorf("creating credential dir: %w", err)
	}
	data, err := json.MarshalIndent(credentialFile{
		Token:        s.Token,
		RefreshToken: s.RefreshToken,
		AccountID:    s.Account.ID,
		Email:        s.Account.Email,
		Username:     s.Account.Username,
		ExpiresAt:    s.ExpiresAt,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding credentials: %w", err)
	}
	if err := os.WriteFile(c.path, data, 0o600); err != nil {
		return fmt.Errorf("writing credentials: %w", err)
	}
	// WriteFile keeps the mode of an existing file.
	return os.Chmod(c.path, 0o600)
}

// Load returns the saved session. The token env var wins over the file's
// token; the account still comes from the file when one decodes.
// A missing or expired session yields ErrNotFound.
func (c *CredentialStore) Load() (*domain.Session, error) {
	if tok := c.getenv(TokenEnv); tok != "" {
		s := &domain.Session{Token: tok}
		if f, err := c.read(); err == nil {
			s.Account = f.account()
		}
		return s, nil
	}

	f, err := c.read()
	if err != nil {
		return nil, err
	}
	s := &domain.Session{
		Token:        f.Token,
		RefreshToken: f.RefreshToken,
		Account:      f.account(),
		ExpiresAt:    f.ExpiresAt,
	}
	if s.Token == "" || s.Expired(time.Now()) {
		return nil, domain.ErrNotFound
	}
	return s, nil
}

func (c *CredentialStore) read() (*credentialFile, error) {
	data, err := os.ReadFile(c.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading credentials: %w", err)
	}

	var f credentialFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decoding credentials: %w", err)
	}
	return &f, nil
}

func (f *credentialFile) account() domain.Account {
	return domain.Account{ID: f.AccountID, Email: f.Email, Username: f.Username}
}

// Clear removes the saved session. Clearing twice is not an error.
func (c *CredentialStore) Clear() error {
	if err := os.Remove(c.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing credentials: %w", err)
	}
	return nil
}
