package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hammamikhairi/recipeit/internal/domain"
	"github.com/hammamikhairi/recipeit/internal/logger"
)

var _ domain.AuthProvider = (*FirebaseProvider)(nil)

// DefaultIdentityURL is the hosted Identity Toolkit endpoint.
const DefaultIdentityURL = "https://identitytoolkit.googleapis.com/v1"

// ── Wire types ───────────────────────────────────────────────────

// SignRequest is the body of accounts:signUp and accounts:signInWithPassword.
type SignRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	DisplayName       string `json:"displayName,omitempty"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

// SignResponse is the reply to both sign calls.
type SignResponse struct {
	IDToken      string `json:"idToken"`
	Email        string `json:"email"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
	LocalID      string `json:"localId"`
	DisplayName  string `json:"displayName,omitempty"`
}

// ErrorResponse is the identity service's error envelope.
type ErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// ProviderError carries the identity service's message verbatim. It
// unwraps to a domain sentinel when the code is a known one.
type ProviderError struct {
	Message string
	err     error
}

func (e *ProviderError) Error() string { return e.Message }

func (e *ProviderError) Unwrap() error { return e.err }

// ── Provider ─────────────────────────────────────────────────────

// FirebaseOption configures the FirebaseProvider.
type FirebaseOption func(*FirebaseProvider)

// WithIdentityURL points the provider at another endpoint, e.g. the
// local emulator.
func WithIdentityURL(u string) FirebaseOption {
	return func(p *FirebaseProvider) { p.baseURL = strings.TrimRight(u, "/") }
}

// WithFirebaseHTTPClient replaces the underlying HTTP client.
func WithFirebaseHTTPClient(h *http.Client) FirebaseOption {
	return func(p *FirebaseProvider) { p.http = h }
}

// FirebaseProvider signs users up and in through the Identity Toolkit
// REST API.
type FirebaseProvider struct {
	apiKey  string
	baseURL string
	http    *http.Client
	now     func() time.Time
	log     *logger.Logger
}

// NewFirebaseProvider creates a provider for the project's web API key.
func NewFirebaseProvider(apiKey string, log *logger.Logger, opts ...FirebaseOption) *FirebaseProvider {
	p := &FirebaseProvider{
		apiKey:  apiKey,
		baseURL: DefaultIdentityURL,
		http:    &http.Client{Timeout: 15 * time.Second},
		now:     time.Now,
		log:     log,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Register validates the form locally, then creates the account.
func (p *FirebaseProvider) Register(ctx context.Context, reg domain.Registration) (*domain.Account, error) {
	if err := ValidateRegistration(reg); err != nil {
		return nil, err
	}
	email := strings.TrimSpace(reg.Email)
	resp, err := p.call(ctx, "accounts:signUp", SignRequest{
		Email:             email,
		Password:          reg.Password,
		DisplayName:       usernameFor(reg.Username, email),
		ReturnSecureToken: true,
	})
	if err != nil {
		return nil, err
	}
	p.log.Info("auth: registered %s", resp.Email)
	acc := resp.account()
	if acc.Username == "" {
		acc.Username = usernameFor(reg.Username, email)
	}
	return &acc, nil
}

// Login exchanges email and password for an ID token.
func (p *FirebaseProvider) Login(ctx context.Context, creds domain.Credentials) (*domain.Session, error) {
	if err := ValidateCredentials(creds); err != nil {
		return nil, err
	}
	resp, err := p.call(ctx, "accounts:signInWithPassword", SignRequest{
		Email:             strings.TrimSpace(creds.Email),
		Password:          creds.Password,
		ReturnSecureToken: true,
	})
	if err != nil {
		return nil, err
	}

	s := &domain.Session{
		Token:        resp.IDToken,
		RefreshToken: resp.RefreshToken,
		Account:      resp.account(),
	}
	if secs, err := strconv.Atoi(resp.ExpiresIn); err == nil && secs > 0 {
		s.ExpiresAt = p.now().Add(time.Duration(secs) * time.Second)
	}
	p.log.Info("auth: %s signed in", resp.Email)
	return s, nil
}

func (p *FirebaseProvider) call(ctx context.Context, method string, body SignRequest) (*SignResponse, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("auth: marshal payload: %w", err)
	}

	endpoint := p.baseURL + "/" + method + "?key=" + url.QueryEscape(p.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("auth: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	p.log.Debug("auth: POST %s", method)

	resp, err := p.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("auth: request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("auth: read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, providerError(resp.Status, respBody)
	}

	var out SignResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("auth: unmarshal response: %w", err)
	}
	return &out, nil
}

func (r *SignResponse) account() domain.Account {
	return domain.Account{ID: r.LocalID, Email: r.Email, Username: r.DisplayName}
}

// providerError maps the service's error codes onto domain sentinels.
// Codes may carry a detail suffix ("WEAK_PASSWORD : Password should be...").
func providerError(status string, body []byte) error {
	var env ErrorResponse
	if err := json.Unmarshal(body, &env); err != nil || env.Error.Message == "" {
		return fmt.Errorf("auth: %s: %s", status, strings.TrimSpace(string(body)))
	}

	msg := env.Error.Message
	code, _, _ := strings.Cut(msg, " ")
	pe := &ProviderError{Message: msg}
	switch code {
	case "EMAIL_EXISTS":
		pe.err = domain.ErrAlreadyExists
	case "EMAIL_NOT_FOUND", "INVALID_PASSWORD", "INVALID_LOGIN_CREDENTIALS", "USER_DISABLED":
		pe.err = domain.ErrInvalidCredentials
	case "WEAK_PASSWORD":
		pe.err = domain.ErrWeakPassword
	case "MISSING_EMAIL", "MISSING_PASSWORD":
		pe.err = domain.ErrMissingField
	}
	return pe
}
