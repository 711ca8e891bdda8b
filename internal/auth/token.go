package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/inkpost/backend/internal/common"
	"github.com/inkpost/backend/internal/models"
)

// TokenType discriminates the two token variants carried in the typ claim.
// Verification rejects a token whose typ does not match the expected kind,
// so an access token can never be replayed as a refresh token or vice versa.
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// Claims is the signed payload of both token kinds. Access tokens carry the
// full identity snapshot; refresh tokens carry only the subject and typ.
type Claims struct {
	jwt.RegisteredClaims
	Email     string    `json:"email,omitempty"`
	Username  string    `json:"username,omitempty"`
	Role      string    `json:"role,omitempty"`
	TokenType TokenType `json:"typ"`
}

// UserID parses the subject claim as a user ID.
func (c *Claims) UserID() (uuid.UUID, error) {
	return uuid.Parse(c.Subject)
}

// Codec signs, verifies, and decodes bearer tokens. It holds only secret
// material and TTL configuration; all methods are safe for concurrent use.
type Codec struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	issuer        string
}

// NewCodec validates the secret material once at construction so that token
// issuance later on can only fail inside the jwt library itself. An empty
// refresh secret falls back to the access secret.
func NewCodec(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration, issuer string) (*Codec, error) {
	if accessSecret == "" {
		return nil, errors.New("token codec: access secret is empty")
	}
	if refreshSecret == "" {
		refreshSecret = accessSecret
	}
	if accessTTL <= 0 || refreshTTL <= 0 {
		return nil, errors.New("token codec: token TTLs must be positive")
	}
	return &Codec{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		issuer:        issuer,
	}, nil
}

func (c *Codec) AccessTTL() time.Duration  { return c.accessTTL }
func (c *Codec) RefreshTTL() time.Duration { return c.refreshTTL }

// IssueAccess mints a short-lived access token for the user and returns it
// with its expiry time.
func (c *Codec) IssueAccess(user *models.User) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(c.accessTTL)
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			Issuer:    c.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Email:     user.Email,
		Username:  user.Username,
		Role:      user.Role,
		TokenType: TokenTypeAccess,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.accessSecret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("signing access token: %w", err)
	}
	return signed, expiresAt, nil
}

// IssueRefresh mints a long-lived refresh token bound to userID and returns
// it with its expiry time. The jti claim makes every issued token unique.
func (c *Codec) IssueRefresh(userID uuid.UUID) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(c.refreshTTL)
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			Issuer:    c.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
		TokenType: TokenTypeRefresh,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.refreshSecret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("signing refresh token: %w", err)
	}
	return signed, expiresAt, nil
}

// VerifyAccess checks the signature, expiry, and typ of an access token.
func (c *Codec) VerifyAccess(tokenString string) (*Claims, error) {
	return c.verify(tokenString, c.accessSecret, TokenTypeAccess)
}

// VerifyRefresh checks the signature, expiry, and typ of a refresh token.
func (c *Codec) VerifyRefresh(tokenString string) (*Claims, error) {
	return c.verify(tokenString, c.refreshSecret, TokenTypeRefresh)
}

func (c *Codec) verify(tokenString string, secret []byte, want TokenType) (*Claims, error) {
	claims := &Claims{}
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if c.issuer != "" {
		opts = append(opts, jwt.WithIssuer(c.issuer))
	}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}
	if !token.Valid || claims.TokenType != want {
		return nil, common.ErrInvalidToken
	}
	return claims, nil
}

// DecodeUnverified returns the claims of a token without checking its
// signature or expiry, or nil when the token cannot be parsed at all. It
// exists solely so logout can read the expiry of a token it is about to
// blacklist; never use it to authenticate.
func (c *Codec) DecodeUnverified(tokenString string) *Claims {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return nil
	}
	return claims
}

// HashToken returns the hex-encoded SHA-256 of a token value. Stores index
// tokens by this hash so a leaked table never yields usable bearer tokens.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
