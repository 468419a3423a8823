package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthService(t *testing.T) {
	auth := NewAuthService("test-secret")

	t.Run("Round-trips the player id through a token", func(t *testing.T) {
		// Given: a token for a player
		token, err := auth.GenerateToken("player-1")
		require.NoError(t, err)
		require.NotEmpty(t, token)

		// When: parsing it back
		playerID, err := auth.ParseToken(token)

		// Then: the identity survives
		require.NoError(t, err)
		assert.Equal(t, "player-1", playerID)
	})

	t.Run("Rejects a token signed with another secret", func(t *testing.T) {
		stranger := NewAuthService("other-secret")
		token, err := stranger.GenerateToken("player-1")
		require.NoError(t, err)

		_, err = auth.ParseToken(token)

		assert.Error(t, err)
	})

	t.Run("Rejects garbage", func(t *testing.T) {
		_, err := auth.ParseToken("not-a-token")

		assert.Error(t, err)
	})

	t.Run("Rejects an expired token", func(t *testing.T) {
		claims := jwt.MapClaims{
			"player_id": "player-1",
			"exp":       time.Now().Add(-time.Hour).Unix(),
		}
		expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
		require.NoError(t, err)

		_, err = auth.ParseToken(expired)

		assert.Error(t, err)
	})

	t.Run("Rejects a token without a player id", func(t *testing.T) {
		claims := jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()}
		anonymous, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
		require.NoError(t, err)

		_, err = auth.ParseToken(anonymous)

		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Rejects the none signing algorithm", func(t *testing.T) {
		claims := jwt.MapClaims{"player_id": "player-1"}
		unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = auth.ParseToken(unsigned)

		assert.Error(t, err)
	})
}
