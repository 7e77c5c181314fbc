// internal/utils/jwt_test.go
package utils

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	SetJWTSecret("test-secret")

	userID := uuid.New()
	token, err := GenerateJWT(userID, "Ana", "user", 1)
	require.NoError(t, err)

	claims, err := ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.UserID)
	assert.Equal(t, "Ana", claims.Nombre)
	assert.Equal(t, "user", claims.Role)
	assert.Equal(t, "sobrazero", claims.Issuer)
}

func TestJWTRejectsWrongSecret(t *testing.T) {
	SetJWTSecret("test-secret")
	token, err := GenerateJWT(uuid.New(), "Ana", "user", 1)
	require.NoError(t, err)

	SetJWTSecret("another-secret")
	_, err = ValidateJWT(token)
	assert.Error(t, err)
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	SetJWTSecret("test-secret")

	userID := uuid.New()
	token, err := GenerateRefreshToken(userID, 24)
	require.NoError(t, err)

	subject, err := ValidateRefreshToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), subject)
}

func TestWebhookSignatureRoundTrip(t *testing.T) {
	body := []byte(`{"data":{"id":"pay_1"}}`)

	sig := SignPayload(body, "whsec_test")
	assert.True(t, VerifySignature(body, "whsec_test", sig))
	assert.False(t, VerifySignature(body, "whsec_other", sig))
	assert.False(t, VerifySignature([]byte("tampered"), "whsec_test", sig))
}
