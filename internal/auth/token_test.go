package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkpost/backend/internal/common"
	"github.com/inkpost/backend/internal/models"
)

func newTestCodec(t *testing.T) *Codec {
	t.Helper()
	c, err := NewCodec("access-secret", "refresh-secret", 15*time.Minute, 24*time.Hour, "inkpost")
	require.NoError(t, err)
	return c
}

func testUser() *models.User {
	return &models.User{
		ID:       uuid.New(),
		Email:    "reader@example.com",
		Username: "reader",
		Role:     "user",
		IsActive: true,
	}
}

func TestNewCodec_RequiresAccessSecret(t *testing.T) {
	_, err := NewCodec("", "", time.Minute, time.Hour, "inkpost")
	require.Error(t, err)
}

func TestNewCodec_RequiresPositiveTTLs(t *testing.T) {
	_, err := NewCodec("s", "", 0, time.Hour, "inkpost")
	require.Error(t, err)
	_, err = NewCodec("s", "", time.Minute, -time.Hour, "inkpost")
	require.Error(t, err)
}

func TestIssueAccess_RoundTrip(t *testing.T) {
	codec := newTestCodec(t)
	user := testUser()

	token, expiresAt, err := codec.IssueAccess(user)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), expiresAt, 5*time.Second)

	claims, err := codec.VerifyAccess(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), claims.Subject)
	assert.Equal(t, user.Email, claims.Email)
	assert.Equal(t, user.Username, claims.Username)
	assert.Equal(t, user.Role, claims.Role)
	assert.Equal(t, TokenTypeAccess, claims.TokenType)
	assert.Equal(t, "inkpost", claims.Issuer)

	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, user.ID, id)
}

func TestIssueRefresh_RoundTrip(t *testing.T) {
	codec := newTestCodec(t)
	userID := uuid.New()

	token, _, err := codec.IssueRefresh(userID)
	require.NoError(t, err)

	claims, err := codec.VerifyRefresh(token)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.Subject)
	assert.Equal(t, TokenTypeRefresh, claims.TokenType)
	assert.NotEmpty(t, claims.ID, "refresh tokens must carry a unique jti")
}

func TestIssueRefresh_TokensAreUnique(t *testing.T) {
	codec := newTestCodec(t)
	userID := uuid.New()

	a, _, err := codec.IssueRefresh(userID)
	require.NoError(t, err)
	b, _, err := codec.IssueRefresh(userID)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestVerify_RejectsWrongTokenType(t *testing.T) {
	// Same secret for both kinds so only the typ claim can tell them apart.
	codec, err := NewCodec("shared-secret", "", time.Minute, time.Hour, "inkpost")
	require.NoError(t, err)

	refresh, _, err := codec.IssueRefresh(uuid.New())
	require.NoError(t, err)
	_, err = codec.VerifyAccess(refresh)
	assert.ErrorIs(t, err, common.ErrInvalidToken)

	access, _, err := codec.IssueAccess(testUser())
	require.NoError(t, err)
	_, err = codec.VerifyRefresh(access)
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestVerify_RejectsTamperedSignature(t *testing.T) {
	codec := newTestCodec(t)
	other, err := NewCodec("another-secret", "", time.Minute, time.Hour, "inkpost")
	require.NoError(t, err)

	forged, _, err := other.IssueAccess(testUser())
	require.NoError(t, err)

	_, err = codec.VerifyAccess(forged)
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestVerify_RejectsExpiredToken(t *testing.T) {
	codec, err := NewCodec("access-secret", "", time.Millisecond, time.Millisecond, "inkpost")
	require.NoError(t, err)

	token, _, err := codec.IssueAccess(testUser())
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)

	_, err = codec.VerifyAccess(token)
	assert.ErrorIs(t, err, common.ErrTokenExpired)
}

func TestVerify_RejectsMalformedToken(t *testing.T) {
	codec := newTestCodec(t)
	_, err := codec.VerifyAccess("not-a-jwt")
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestVerify_RejectsWrongIssuer(t *testing.T) {
	foreign, err := NewCodec("access-secret", "refresh-secret", time.Minute, time.Hour, "someone-else")
	require.NoError(t, err)
	codec := newTestCodec(t)

	token, _, err := foreign.IssueAccess(testUser())
	require.NoError(t, err)
	_, err = codec.VerifyAccess(token)
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestRefreshSecret_DefaultsToAccessSecret(t *testing.T) {
	codec, err := NewCodec("only-secret", "", time.Minute, time.Hour, "inkpost")
	require.NoError(t, err)

	token, _, err := codec.IssueRefresh(uuid.New())
	require.NoError(t, err)
	_, err = codec.VerifyRefresh(token)
	assert.NoError(t, err)
}

func TestDecodeUnverified(t *testing.T) {
	codec, err := NewCodec("access-secret", "", time.Millisecond, time.Millisecond, "inkpost")
	require.NoError(t, err)
	user := testUser()

	token, _, err := codec.IssueAccess(user)
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)

	// Expired and even forged tokens still decode; only parse failures yield nil.
	claims := codec.DecodeUnverified(token)
	require.NotNil(t, claims)
	assert.Equal(t, user.ID.String(), claims.Subject)

	assert.Nil(t, codec.DecodeUnverified("garbage"))
}

func TestHashToken_StableAndHex(t *testing.T) {
	h1 := HashToken("tok")
	h2 := HashToken("tok")
	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 64)
	assert.NotEqual(t, h1, HashToken("tok2"))
}
