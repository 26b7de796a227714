package tokens

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	accessSecret  = []byte("test-jwt-secret")
	refreshSecret = []byte("test-refresh-secret")
)

func TestAccessToken_RoundTrip(t *testing.T) {
	t.Parallel()

	userID := uuid.NewString()
	exp := time.Now().Add(15 * time.Minute).UTC()

	token, err := NewAccessToken(userID, "ada", accessSecret, exp)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := AccessClaimsFromToken(token, accessSecret)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.Subject)
	assert.Equal(t, "ada", claims.Username)
	require.NotNil(t, claims.ExpiresAt)
	assert.WithinDuration(t, exp, claims.ExpiresAt.Time, time.Second)
}

func TestRefreshToken_RoundTrip(t *testing.T) {
	t.Parallel()

	userID := uuid.NewString()
	exp := time.Now().Add(7 * 24 * time.Hour).UTC()

	token, err := NewRefreshToken(userID, refreshSecret, exp)
	require.NoError(t, err)

	claims, err := RefreshClaimsFromToken(token, refreshSecret)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.Subject)
	require.NotNil(t, claims.ExpiresAt)
	assert.WithinDuration(t, exp, claims.ExpiresAt.Time, time.Second)
}

func TestTokens_DistinctSecrets(t *testing.T) {
	t.Parallel()

	token, err := NewRefreshToken(uuid.NewString(), refreshSecret, time.Now().Add(time.Hour))
	require.NoError(t, err)

	// a refresh token must not verify against the access secret
	_, err = RefreshClaimsFromToken(token, accessSecret)
	require.Error(t, err)
}

func TestRefreshToken_Expired(t *testing.T) {
	t.Parallel()

	token, err := NewRefreshToken(uuid.NewString(), refreshSecret, time.Now().Add(-time.Minute))
	require.NoError(t, err)

	_, err = RefreshClaimsFromToken(token, refreshSecret)
	require.Error(t, err)
}

func TestAccessClaimsFromToken_Garbage(t *testing.T) {
	t.Parallel()

	_, err := AccessClaimsFromToken("not-a-jwt", accessSecret)
	require.Error(t, err)
}
