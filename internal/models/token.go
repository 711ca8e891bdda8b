package models

import (
	"time"

	"github.com/google/uuid"
)

// RefreshToken is a persisted refresh-token record. Only the SHA-256 hash of
// the token value is stored. A revoked record is kept until the expiry sweep
// removes it, so reuse after rotation can be observed and audited.
type RefreshToken struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	TokenHash string
	ExpiresAt time.Time
	Revoked   bool
	CreatedAt time.Time
}

// BlacklistedToken is an access token rejected before its natural expiry
// (logout, logout-all). UserID may be uuid.Nil when the token could not be
// decoded. ExpiresAt mirrors the token's own expiry, so the record becomes
// eligible for cleanup the moment the token would have died anyway.
type BlacklistedToken struct {
	TokenHash string
	UserID    uuid.UUID
	ExpiresAt time.Time
	CreatedAt time.Time
}
