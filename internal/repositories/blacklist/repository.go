// Package blacklist declares the deny-list contract for access tokens
// invalidated before their natural expiry, with Postgres and Redis backends.
package blacklist

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository records access tokens (by SHA-256 hash) that must be rejected
// until their own expiry passes. Insert is idempotent.
type Repository interface {
	// Insert adds tokenHash to the deny-list. userID may be uuid.Nil when
	// the token could not be decoded.
	Insert(ctx context.Context, tokenHash string, userID uuid.UUID, expiresAt time.Time) error

	Contains(ctx context.Context, tokenHash string) (bool, error)

	// PurgeExpired removes entries whose expiry has passed and returns the
	// number removed. Backends with native TTLs may always return 0.
	PurgeExpired(ctx context.Context) (int64, error)
}
