package oauth

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeIDToken(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   "auth0|12345",
		"email": "user@example.com",
		"name":  "Some User",
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	claims, err := DecodeIDToken(signed)
	require.NoError(t, err)
	assert.Equal(t, "auth0|12345", claims.Subject)
	assert.Equal(t, "user@example.com", claims.Email)
	assert.Equal(t, "Some User", claims.Name)
}

func TestDecodeIDTokenGarbage(t *testing.T) {
	_, err := DecodeIDToken("not-a-jwt")
	assert.Error(t, err)
}
