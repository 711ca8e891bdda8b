// Package services contains the backend's business logic. This file
// implements AuthService, which owns every credential and token lifecycle
// decision: registration, login, refresh rotation, logout, validation,
// password changes, and expiry cleanup. Storage components own durability
// only; no lifecycle rule lives outside this type.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/inkpost/backend/internal/auth"
	"github.com/inkpost/backend/internal/common"
	"github.com/inkpost/backend/internal/logging"
	"github.com/inkpost/backend/internal/models"
	"github.com/inkpost/backend/internal/repositories/blacklist"
	"github.com/inkpost/backend/internal/repositories/refreshtokens"
	"github.com/inkpost/backend/internal/repositories/users"
)

// DefaultRole is assigned to accounts created through Register.
const DefaultRole = "user"

// TokenPair bundles a short-lived access token and a long-lived refresh
// token. ExpiresAt is the access token's expiry.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// AuthResult is returned by Register and Login.
type AuthResult struct {
	User   *models.User
	Tokens *TokenPair
}

// AuthService orchestrates the account store, the two token stores, the
// token codec, and the password hasher. All collaborators are supplied at
// construction; the service itself holds no mutable state and is safe for
// concurrent use.
type AuthService struct {
	users     users.Repository
	refresh   refreshtokens.Repository
	blacklist blacklist.Repository
	codec     *auth.Codec
	hasher    *auth.PasswordHasher
	logger    logging.Logger
}

func NewAuthService(
	userRepo users.Repository,
	refreshRepo refreshtokens.Repository,
	blacklistRepo blacklist.Repository,
	codec *auth.Codec,
	hasher *auth.PasswordHasher,
	logger logging.Logger,
) *AuthService {
	return &AuthService{
		users:     userRepo,
		refresh:   refreshRepo,
		blacklist: blacklistRepo,
		codec:     codec,
		hasher:    hasher,
		logger:    logger,
	}
}

// Register creates an account and immediately issues a token pair. Email and
// username existence are checked concurrently and both checks complete
// before the decision; when both are taken, the email conflict is reported.
// A create race lost to a concurrent registration surfaces the same conflict
// errors via the store's unique indexes.
func (s *AuthService) Register(ctx context.Context, email, username, password string) (*AuthResult, error) {
	if email == "" || username == "" || password == "" {
		return nil, fmt.Errorf("email, username, and password are required: %w", common.ErrValidation)
	}

	var emailExists, usernameExists bool
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, err := s.users.FindByEmail(gctx, email)
		if err == nil {
			emailExists = true
			return nil
		}
		if errors.Is(err, common.ErrNotFound) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		_, err := s.users.FindByUsername(gctx, username)
		if err == nil {
			usernameExists = true
			return nil
		}
		if errors.Is(err, common.ErrNotFound) {
			return nil
		}
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("checking existing accounts: %w", err)
	}
	if emailExists {
		return nil, common.ErrEmailTaken
	}
	if usernameExists {
		return nil, common.ErrUsernameTaken
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user, err := s.users.Create(ctx, &models.User{
		Email:        email,
		Username:     username,
		PasswordHash: hash,
		Role:         DefaultRole,
		IsActive:     true,
	})
	if err != nil {
		return nil, err
	}

	pair, err := s.issuePair(ctx, user)
	if err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "account registered", "user_id", user.ID)
	return &AuthResult{User: user, Tokens: pair}, nil
}

// Login verifies credentials and mints a fresh token pair. Unknown email and
// wrong password are indistinguishable to the caller. A successful login
// revokes every refresh token previously issued to the account before the
// new pair exists, so stolen refresh tokens die on the owner's next login.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrUnauthorized
		}
		return nil, fmt.Errorf("looking up account: %w", err)
	}
	if !s.hasher.Check(password, user.PasswordHash) {
		return nil, common.ErrUnauthorized
	}
	if !user.IsActive {
		return nil, common.ErrForbidden
	}

	now := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.users.UpdateLastLogin(gctx, user.ID, now) })
	g.Go(func() error { return s.refresh.RevokeAllForUser(gctx, user.ID) })
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("preparing session: %w", err)
	}
	user.LastLoginAt = &now

	pair, err := s.issuePair(ctx, user)
	if err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "login succeeded", "user_id", user.ID)
	return &AuthResult{User: user, Tokens: pair}, nil
}

// Refresh rotates a refresh token: the presented token is revoked and a new
// pair is issued in its place. A given token value mints a pair at most
// once; of two concurrent calls with the same value, the conditional revoke
// lets exactly one through. Every failure mode is reported as
// common.ErrInvalidToken so callers learn nothing about why.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	tokenHash := auth.HashToken(refreshToken)

	record, err := s.refresh.Find(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrInvalidToken
		}
		return nil, fmt.Errorf("looking up refresh token: %w", err)
	}
	if record.Revoked || time.Now().After(record.ExpiresAt) {
		return nil, common.ErrInvalidToken
	}

	// A stored record whose token no longer verifies means someone presented
	// a tampered or mismatched value. Treat it as compromise: kill the record.
	claims, err := s.codec.VerifyRefresh(refreshToken)
	if err != nil {
		s.revokeDefensively(ctx, tokenHash, "refresh token failed verification")
		return nil, common.ErrInvalidToken
	}
	if ownerID, err := claims.UserID(); err != nil || ownerID != record.UserID {
		s.revokeDefensively(ctx, tokenHash, "refresh token subject mismatch")
		return nil, common.ErrInvalidToken
	}

	user, err := s.users.FindByID(ctx, record.UserID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			s.revokeDefensively(ctx, tokenHash, "refresh token owner missing")
			return nil, common.ErrInvalidToken
		}
		return nil, fmt.Errorf("looking up account: %w", err)
	}
	if !user.IsActive {
		s.revokeDefensively(ctx, tokenHash, "refresh token owner deactivated")
		return nil, common.ErrInvalidToken
	}

	changed, err := s.refresh.Revoke(ctx, tokenHash)
	if err != nil {
		return nil, fmt.Errorf("revoking refresh token: %w", err)
	}
	if !changed {
		// A concurrent rotation of the same value won the race.
		return nil, common.ErrInvalidToken
	}

	return s.issuePair(ctx, user)
}

// Logout blacklists the presented access token and, when given, revokes the
// refresh token. The access token need not verify: an undecodable token is
// blacklisted for the configured access TTL instead of its own expiry.
func (s *AuthService) Logout(ctx context.Context, accessToken, refreshToken string) error {
	expiresAt := time.Now().Add(s.codec.AccessTTL())
	ownerID := uuid.Nil
	if claims := s.codec.DecodeUnverified(accessToken); claims != nil {
		if claims.ExpiresAt != nil {
			expiresAt = claims.ExpiresAt.Time
		}
		if id, err := claims.UserID(); err == nil {
			ownerID = id
		}
	}
	if err := s.blacklist.Insert(ctx, auth.HashToken(accessToken), ownerID, expiresAt); err != nil {
		return fmt.Errorf("blacklisting access token: %w", err)
	}

	if refreshToken != "" {
		if _, err := s.refresh.Revoke(ctx, auth.HashToken(refreshToken)); err != nil {
			return fmt.Errorf("revoking refresh token: %w", err)
		}
	}
	return nil
}

// LogoutAll blacklists the current access token and revokes every refresh
// token the user holds, ending sessions on all devices.
func (s *AuthService) LogoutAll(ctx context.Context, userID uuid.UUID, accessToken string) error {
	expiresAt := time.Now().Add(s.codec.AccessTTL())
	if claims := s.codec.DecodeUnverified(accessToken); claims != nil && claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	if err := s.blacklist.Insert(ctx, auth.HashToken(accessToken), userID, expiresAt); err != nil {
		return fmt.Errorf("blacklisting access token: %w", err)
	}
	if err := s.refresh.RevokeAllForUser(ctx, userID); err != nil {
		return fmt.Errorf("revoking refresh tokens: %w", err)
	}
	s.logger.Info(ctx, "all sessions ended", "user_id", userID)
	return nil
}

// ValidateAccessToken resolves an access token to its account. It returns
// (nil, nil) for every authentication failure (blacklisted, bad signature,
// expired, wrong token type, unknown or deactivated account) so callers
// cannot branch on why validation failed. A non-nil error means the stores
// were unreachable, never that the token was bad.
func (s *AuthService) ValidateAccessToken(ctx context.Context, accessToken string) (*models.User, error) {
	if accessToken == "" {
		return nil, nil
	}

	blacklisted, err := s.blacklist.Contains(ctx, auth.HashToken(accessToken))
	if err != nil {
		return nil, fmt.Errorf("checking blacklist: %w", err)
	}
	if blacklisted {
		return nil, nil
	}

	claims, err := s.codec.VerifyAccess(accessToken)
	if err != nil {
		return nil, nil
	}
	userID, err := claims.UserID()
	if err != nil {
		return nil, nil
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("looking up account: %w", err)
	}
	if !user.IsActive {
		return nil, nil
	}
	return user, nil
}

// ChangePassword verifies the current password, rejects no-op changes, and
// on success stores the new hash and revokes all standing refresh tokens.
func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword string) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrNotFound
		}
		return fmt.Errorf("looking up account: %w", err)
	}

	if !s.hasher.Check(currentPassword, user.PasswordHash) {
		return fmt.Errorf("current password is incorrect: %w", common.ErrValidation)
	}
	if newPassword == currentPassword || s.hasher.Check(newPassword, user.PasswordHash) {
		return fmt.Errorf("new password must differ from the current one: %w", common.ErrValidation)
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	if err := s.users.UpdatePasswordHash(ctx, userID, hash); err != nil {
		return fmt.Errorf("updating password: %w", err)
	}
	if err := s.refresh.RevokeAllForUser(ctx, userID); err != nil {
		return fmt.Errorf("revoking refresh tokens: %w", err)
	}
	s.logger.Info(ctx, "password changed", "user_id", userID)
	return nil
}

// IsTokenBlacklisted reports whether an access token is on the deny-list.
func (s *AuthService) IsTokenBlacklisted(ctx context.Context, accessToken string) (bool, error) {
	return s.blacklist.Contains(ctx, auth.HashToken(accessToken))
}

// CleanupExpiredTokens sweeps expired rows out of both token stores. It is a
// maintenance operation: failures are logged and swallowed so a periodic
// scheduler can never be crashed by a store outage.
func (s *AuthService) CleanupExpiredTokens(ctx context.Context) {
	if n, err := s.refresh.PurgeExpired(ctx); err != nil {
		s.logger.Error(ctx, "purging expired refresh tokens failed", "error", err)
	} else if n > 0 {
		s.logger.Info(ctx, "purged expired refresh tokens", "count", n)
	}

	if n, err := s.blacklist.PurgeExpired(ctx); err != nil {
		s.logger.Error(ctx, "purging expired blacklist entries failed", "error", err)
	} else if n > 0 {
		s.logger.Info(ctx, "purged expired blacklist entries", "count", n)
	}
}

func (s *AuthService) issuePair(ctx context.Context, user *models.User) (*TokenPair, error) {
	accessToken, accessExpiry, err := s.codec.IssueAccess(user)
	if err != nil {
		return nil, fmt.Errorf("issuing access token: %w", err)
	}
	refreshToken, refreshExpiry, err := s.codec.IssueRefresh(user.ID)
	if err != nil {
		return nil, fmt.Errorf("issuing refresh token: %w", err)
	}
	if err := s.refresh.Create(ctx, user.ID, auth.HashToken(refreshToken), refreshExpiry); err != nil {
		return nil, fmt.Errorf("storing refresh token: %w", err)
	}
	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    accessExpiry,
	}, nil
}

// revokeDefensively is best-effort: it runs on paths that already fail the
// caller, so its own errors are only logged.
func (s *AuthService) revokeDefensively(ctx context.Context, tokenHash, reason string) {
	if _, err := s.refresh.Revoke(ctx, tokenHash); err != nil {
		s.logger.Warn(ctx, "defensive revoke failed", "reason", reason, "error", err)
		return
	}
	s.logger.Warn(ctx, "refresh token revoked defensively", "reason", reason)
}
