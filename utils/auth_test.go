package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParseJWT(t *testing.T) {
	JwtKey = []byte("test-secret")

	token, err := GenerateJWT("u1", "ada@example.com", "admin")
	require.NoError(t, err)

	claims, err := ParseJWT(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "ada@example.com", claims.Email)
	assert.Equal(t, "admin", claims.Role)
}

func TestParseJWTWrongKey(t *testing.T) {
	JwtKey = []byte("one")
	token, err := GenerateJWT("u1", "ada@example.com", "user")
	require.NoError(t, err)

	JwtKey = []byte("two")
	_, err = ParseJWT(token)
	assert.Error(t, err)
}
