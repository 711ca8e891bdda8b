// Package refreshtokens declares the repository contract for refresh-token
// records in persistent storage.
package refreshtokens

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/inkpost/backend/internal/models"
)

// Repository stores one row per issued refresh token, keyed by the SHA-256
// hash of the token value. All mutations are idempotent: revoking an
// already-revoked token is a no-op, not an error.
type Repository interface {
	Create(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) error

	// Find returns the record for tokenHash or common.ErrNotFound.
	Find(ctx context.Context, tokenHash string) (*models.RefreshToken, error)

	// Revoke marks the record revoked and reports whether this call changed
	// it. The conditional update is the compare-and-set step rotation relies
	// on: of two concurrent calls with the same hash, exactly one sees true.
	Revoke(ctx context.Context, tokenHash string) (bool, error)

	RevokeAllForUser(ctx context.Context, userID uuid.UUID) error

	// PurgeExpired deletes records whose expiry has passed and returns the
	// number of rows removed.
	PurgeExpired(ctx context.Context) (int64, error)
}
