// Package auth registers and signs in users, either against the hosted
// identity service or against a local account store, and keeps the
// resulting session on disk.
package auth

import (
	"fmt"
	"net/mail"
	"strings"

	"github.com/hammamikhairi/recipeit/internal/domain"
)

// MinPasswordLength matches the hosted identity service's rule.
const MinPasswordLength = 6

// ValidateRegistration checks the register form before any provider call.
// The password confirmation is checked first, as the form does.
func ValidateRegistration(reg domain.Registration) error {
	if reg.Password != reg.ConfirmPassword {
		return domain.ErrPasswordMismatch
	}
	if err := ValidateCredentials(domain.Credentials{Email: reg.Email, Password: reg.Password}); err != nil {
		return err
	}
	if _, err := mail.ParseAddress(strings.TrimSpace(reg.Email)); err != nil {
		return fmt.Errorf("email %q: %w", reg.Email, domain.ErrInvalidCredentials)
	}
	if len(reg.Password) < MinPasswordLength {
		return domain.ErrWeakPassword
	}
	return nil
}

// ValidateCredentials rejects an empty email or password.
func ValidateCredentials(c domain.Credentials) error {
	if strings.TrimSpace(c.Email) == "" {
		return fmt.Errorf("email: %w", domain.ErrMissingField)
	}
	if c.Password == "" {
		return fmt.Errorf("password: %w", domain.ErrMissingField)
	}
	return nil
}

// usernameFor returns the chosen username, or the local part of the email.
func usernameFor(username, email string) string {
	if u := strings.TrimSpace(username); u != "" {
		return u
	}
	local, _, _ := strings.Cut(email, "@")
	return local
}
