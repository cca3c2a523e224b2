package domain

import "time"

// Account identifies a registered user.
type Account struct {
	ID       string
	Email    string
	Username string
}

// Credentials are what the user types on the login screen.
type Credentials struct {
	Email    string
	Password string
}

// Registration is the register form payload.
type Registration struct {
	Username        string
	Email           string
	Password        string
	ConfirmPassword string
}

// Session is an authenticated login returned by an AuthProvider.
type Session struct {
	Token        string
	RefreshToken string
	Account      Account
	ExpiresAt    time.Time
}

// Expired reports whether the session has a known expiry in the past.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}
