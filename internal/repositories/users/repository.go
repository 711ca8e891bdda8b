// Package users declares the repository contract for account records.
package users

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/inkpost/backend/internal/models"
)

// Repository is the persistence contract for accounts. Lookups return
// common.ErrNotFound when no row matches; Create maps unique-index
// violations to common.ErrEmailTaken / common.ErrUsernameTaken.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, passwordHash string) error
}
