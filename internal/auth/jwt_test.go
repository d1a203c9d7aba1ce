package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	service := NewTokenService("test-secret", time.Minute)

	token, err := service.GenerateAccessToken("123456789")
	require.NoError(t, err)

	claims, err := service.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "123456789", claims.UserID)
}

func TestTokenWrongSecret(t *testing.T) {
	token, err := NewTokenService("secret-a", time.Minute).GenerateAccessToken("u1")
	require.NoError(t, err)

	_, err = NewTokenService("secret-b", time.Minute).ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenExpired(t *testing.T) {
	token, err := NewTokenService("test-secret", -time.Minute).GenerateAccessToken("u1")
	require.NoError(t, err)

	_, err = NewTokenService("test-secret", -time.Minute).ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestTokenGarbage(t *testing.T) {
	service := NewTokenService("test-secret", time.Minute)

	for _, token := range []string{"", "not-a-jwt", "a.b.c"} {
		_, err := service.ValidateAccessToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken, "token %q", token)
	}
}
