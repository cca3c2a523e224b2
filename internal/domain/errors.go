package domain

import "errors"

// Sentinel errors used across layers.
var (
	ErrNotFound           = errors.New("not found")
	ErrMissingID          = errors.New("recipe id is missing")
	ErrInvalidRecord      = errors.New("invalid record")
	ErrAlreadyExists      = errors.New("already exists")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrMissingField       = errors.New("required field is empty")
	ErrWeakPassword       = errors.New("password should be at least 6 characters")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidRating      = errors.New("rating must be between 1 and 5")
	ErrEmptyReview        = errors.New("review text is empty")
	ErrNotImplemented     = errors.New("not implemented")
)
