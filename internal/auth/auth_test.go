package auth

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestVerifyToken(t *testing.T) {
	InitVerifier(&Config{JWTSecret: "test-secret"})

	t.Run("valid token", func(t *testing.T) {
		tokenString := signToken(t, "test-secret", jwt.MapClaims{
			"sub": "user-42",
			"exp": time.Now().Add(time.Hour).Unix(),
		})

		r := httptest.NewRequest("GET", "/v1/items", nil)
		r.Header.Set("Authorization", "Bearer "+tokenString)

		userID, err := VerifyToken(r)
		require.NoError(t, err)
		assert.Equal(t, "user-42", userID)
	})

	t.Run("missing header", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/v1/items", nil)
		_, err := VerifyToken(r)
		assert.Error(t, err)
	})

	t.Run("no bearer prefix", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/v1/items", nil)
		r.Header.Set("Authorization", "token")
		_, err := VerifyToken(r)
		assert.Error(t, err)
	})

	t.Run("wrong secret", func(t *testing.T) {
		tokenString := signToken(t, "other-secret", jwt.MapClaims{"sub": "user-42"})

		r := httptest.NewRequest("GET", "/v1/items", nil)
		r.Header.Set("Authorization", "Bearer "+tokenString)

		_, err := VerifyToken(r)
		assert.Error(t, err)
	})

	t.Run("expired token", func(t *testing.T) {
		tokenString := signToken(t, "test-secret", jwt.MapClaims{
			"sub": "user-42",
			"exp": time.Now().Add(-time.Hour).Unix(),
		})

		r := httptest.NewRequest("GET", "/v1/items", nil)
		r.Header.Set("Authorization", "Bearer "+tokenString)

		_, err := VerifyToken(r)
		assert.Error(t, err)
	})

	t.Run("no subject", func(t *testing.T) {
		tokenString := signToken(t, "test-secret", jwt.MapClaims{
			"exp": time.Now().Add(time.Hour).Unix(),
		})

		r := httptest.NewRequest("GET", "/v1/items", nil)
		r.Header.Set("Authorization", "Bearer "+tokenString)

		_, err := VerifyToken(r)
		assert.Error(t, err)
	})
}
