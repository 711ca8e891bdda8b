package models

import (
	"time"

	"github.com/google/uuid"
)

// User is an account record as stored in the users table. Identity fields
// (ID, Email, Username, Role) are immutable after creation; IsActive,
// PasswordHash, and LastLoginAt change over the account's lifetime.
type User struct {
	ID           uuid.UUID
	Email        string
	Username     string
	PasswordHash string
	Role         string
	IsActive     bool
	LastLoginAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
