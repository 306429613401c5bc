package jwtutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateToken(t *testing.T) {
	util := NewJWTUtil(&JWTConfig{SigningKey: "test-signing-key", ExpirationHours: 1})

	storeID := uint(42)
	token, err := util.GenerateTokenWithStore("owner@example.com", "7f9c24e5-1d12-4f0a-9c55-0d5f1a2b3c4d", &storeID, "Kitanda da Esquina", "admin")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := util.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "owner@example.com", claims.Email)
	assert.Equal(t, "7f9c24e5-1d12-4f0a-9c55-0d5f1a2b3c4d", claims.IdentityID)
	require.NotNil(t, claims.StoreID)
	assert.Equal(t, storeID, *claims.StoreID)
	assert.Equal(t, "admin", claims.Role)
}

func TestValidateTokenRejectsWrongKey(t *testing.T) {
	issuer := NewJWTUtil(&JWTConfig{SigningKey: "key-one", ExpirationHours: 1})
	verifier := NewJWTUtil(&JWTConfig{SigningKey: "key-two", ExpirationHours: 1})

	token, err := issuer.GenerateToken("owner@example.com", "abc")
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	util := NewJWTUtil(&JWTConfig{SigningKey: "test-signing-key", ExpirationHours: 1})

	_, err := util.ValidateToken("not-a-token")
	assert.Error(t, err)
}
