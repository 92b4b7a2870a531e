package userservice

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	secret := []byte("test-access-secret-0123456789abcdef")
	user := &User{ID: 42, Role: RoleAdmin}

	token, expiry, err := signAccessToken(secret, user, AccessTokenTime)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(AccessTokenTime), expiry, time.Minute)

	userID, role, err := parseAccessToken(secret, token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), userID)
	assert.Equal(t, RoleAdmin, role)
}

func TestAccessTokenWrongSecret(t *testing.T) {
	secret := []byte("test-access-secret-0123456789abcdef")
	user := &User{ID: 42, Role: RoleUser}

	token, _, err := signAccessToken(secret, user, AccessTokenTime)
	require.NoError(t, err)

	_, _, err = parseAccessToken([]byte("another-secret-0123456789abcdef0123"), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAccessTokenExpired(t *testing.T) {
	secret := []byte("test-access-secret-0123456789abcdef")
	user := &User{ID: 42, Role: RoleUser}

	token, _, err := signAccessToken(secret, user, -time.Minute)
	require.NoError(t, err)

	_, _, err = parseAccessToken(secret, token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAccessTokenNotARefreshToken(t *testing.T) {
	accessSecret := []byte("test-access-secret-0123456789abcdef")
	refreshSecret := []byte("test-refresh-secret-0123456789abcdef")
	user := &User{ID: 42, Role: RoleUser}

	access, _, err := signAccessToken(accessSecret, user, AccessTokenTime)
	require.NoError(t, err)

	// an access token must not pass as a refresh token even with the right
	// refresh secret configured
	_, _, err = parseRefreshToken(refreshSecret, access)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	secret := []byte("test-refresh-secret-0123456789abcdef")

	token, jti, expiry, err := signRefreshToken(secret, 42, RefreshTokenTime)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(RefreshTokenTime), expiry, time.Minute)

	userID, parsedJTI, err := parseRefreshToken(secret, token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), userID)
	assert.Equal(t, jti, parsedJTI)
}

func TestRefreshTokenGarbage(t *testing.T) {
	secret := []byte("test-refresh-secret-0123456789abcdef")

	_, _, err := parseRefreshToken(secret, "not.a.jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
