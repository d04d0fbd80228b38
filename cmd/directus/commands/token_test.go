package commands

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/directus/internal/auth"
	"github.com/fivetwenty-io/directus/internal/constants"
	"github.com/fivetwenty-io/directus/pkg/directus"
)

func signTestToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("project-secret"))
	require.NoError(t, err)

	return token
}

func TestDecodeTokenClaims(t *testing.T) {
	t.Parallel()

	raw := signTestToken(t, jwt.MapClaims{
		"id":           "0bc7b36a",
		"role":         "r1",
		"admin_access": true,
		"iss":          "directus",
	})

	claims, err := decodeTokenClaims(raw)
	require.NoError(t, err)
	assert.Equal(t, "0bc7b36a", claims["id"])
	assert.Equal(t, "directus", claims["iss"])

	_, err = decodeTokenClaims("not-a-token")
	require.ErrorIs(t, err, constants.ErrInvalidJWTFormat)
}

func TestBuildTokenStatus(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	expiresAt := now.Add(15 * time.Minute)

	raw := signTestToken(t, jwt.MapClaims{
		"id":           "u1",
		"role":         "r1",
		"admin_access": true,
		"iss":          "directus",
		"exp":          now.Add(time.Hour).Unix(),
	})

	t.Run("stored expiry wins", func(t *testing.T) {
		t.Parallel()

		status, err := buildTokenStatus(directus.StateAuthenticated, &auth.Token{
			AccessToken:  raw,
			RefreshToken: "refresh-token-value",
			ExpiresAt:    expiresAt,
		}, now)
		require.NoError(t, err)

		assert.Equal(t, directus.StateAuthenticated, status.State)
		assert.Equal(t, "u1", status.UserID)
		assert.Equal(t, "r1", status.Role)
		assert.True(t, status.AdminAccess)
		assert.Equal(t, "directus", status.Issuer)
		require.NotNil(t, status.ExpiresAt)
		assert.True(t, expiresAt.Equal(*status.ExpiresAt))
		assert.Equal(t, "15m0s", status.ExpiresIn)
		assert.Equal(t, raw[:constants.TokenPreviewLength]+constants.MaskedSecret, status.AccessToken)
		assert.Equal(t, "refresh-toke"+constants.MaskedSecret, status.RefreshToken)
	})

	t.Run("falls back to the exp claim", func(t *testing.T) {
		t.Parallel()

		status, err := buildTokenStatus(directus.StateExpired, &auth.Token{AccessToken: raw, RefreshToken: "R"}, now)
		require.NoError(t, err)
		require.NotNil(t, status.ExpiresAt)
		assert.Equal(t, "1h0m0s", status.ExpiresIn)
		assert.Equal(t, constants.MaskedSecret, status.RefreshToken)
	})

	t.Run("rejects a malformed access token", func(t *testing.T) {
		t.Parallel()

		_, err := buildTokenStatus(directus.StateAuthenticated, &auth.Token{AccessToken: "garbage", RefreshToken: "R"}, now)
		require.ErrorIs(t, err, constants.ErrInvalidJWTFormat)
	})
}

func TestMaskToken(t *testing.T) {
	t.Parallel()

	assert.Empty(t, maskToken(""))
	assert.Equal(t, constants.MaskedSecret, maskToken("short"))
	assert.Equal(t, "abcdefghijkl"+constants.MaskedSecret, maskToken("abcdefghijklmnop"))
}
