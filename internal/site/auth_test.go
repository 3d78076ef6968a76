package site

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionAuth(t *testing.T) {
	auth, err := NewSessionAuth("parent", "s3cret", "secret", time.Hour)
	require.NoError(t, err)

	t.Run("check_basic", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		_, ok := auth.CheckBasic(req)
		assert.False(t, ok)

		req.SetBasicAuth("parent", "s3cret")
		user, ok := auth.CheckBasic(req)
		assert.True(t, ok)
		assert.Equal(t, "parent", user)

		req.SetBasicAuth("Parent", "s3cret")
		_, ok = auth.CheckBasic(req)
		assert.False(t, ok)
	})

	t.Run("token_round_trip", func(t *testing.T) {
		token, expiresAt, err := auth.GenerateToken("parent")
		require.NoError(t, err)
		assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

		claims, err := auth.ValidateToken(token)
		require.NoError(t, err)
		assert.Equal(t, "parent", claims.User)
	})

	t.Run("empty_user", func(t *testing.T) {
		_, _, err := auth.GenerateToken("")
		assert.Error(t, err)
	})

	t.Run("other_secret_rejected", func(t *testing.T) {
		other, err := NewSessionAuth("parent", "s3cret", "different", time.Hour)
		require.NoError(t, err)
		token, _, err := other.GenerateToken("parent")
		require.NoError(t, err)
		_, err = auth.ValidateToken(token)
		assert.Error(t, err)
	})

	t.Run("other_user_rejected", func(t *testing.T) {
		token, _, err := auth.GenerateToken("someone")
		require.NoError(t, err)
		_, err = auth.ValidateToken(token)
		assert.Error(t, err)
	})

	t.Run("unsigned_token_rejected", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodNone, SessionClaims{User: "parent"})
		raw, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = auth.ValidateToken(raw)
		assert.Error(t, err)
	})

	t.Run("random_secret_when_empty", func(t *testing.T) {
		a, err := NewSessionAuth("u", "p", "", time.Hour)
		require.NoError(t, err)
		assert.Len(t, a.secretKey, 32)
	})
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "image/jpeg", ContentType("photo.JPEG"))
	assert.Equal(t, "image/webp", ContentType("a/b.webp"))
	assert.Equal(t, "application/json", ContentType("manifest.json"))
	assert.Equal(t, "application/octet-stream", ContentType("Makefile"))
}
