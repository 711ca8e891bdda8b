// Package common defines the sentinel errors shared across the backend.
// Callers should use errors.Is to match these values; repositories and
// services wrap them with fmt.Errorf("...: %w", err) to add context.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Validation / policy errors (actionable, safe to show to users).
	ErrValidation = errors.New("validation error")

	// Uniqueness violations on registration. Both match ErrConflict.
	ErrConflict      = errors.New("already exists")
	ErrEmailTaken    = fmt.Errorf("email %w", ErrConflict)
	ErrUsernameTaken = fmt.Errorf("username %w", ErrConflict)

	// Credential failures. Deliberately uninformative: the same error is
	// returned for an unknown email and a wrong password.
	ErrUnauthorized = errors.New("invalid email or password")

	// Account exists but may not authenticate.
	ErrForbidden = errors.New("account is deactivated")

	// Token lifecycle errors. ErrInvalidToken covers signature, type, and
	// replay failures; on the refresh path expiry of the presented token is
	// folded into it so callers cannot tell the cases apart.
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrTokenExpired = errors.New("token expired")
)
