package jwttoken

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "brokerdesk/pkg/domain"
	dErrors "brokerdesk/pkg/domain-errors"
)

func TestGenerateAndValidateRoundTrip(t *testing.T) {
	service := NewService("test-signing-key")
	userID := id.UserID(uuid.New())

	token, err := service.GenerateAccessToken(userID, "agent", "ana@office.pt", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := service.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.UserID)
	assert.Equal(t, "agent", claims.Role)
	assert.Equal(t, "ana@office.pt", claims.Email)
	assert.Equal(t, "brokerdesk", claims.Issuer)
}

func TestValidateRejectsExpiredTokens(t *testing.T) {
	service := NewService("test-signing-key")

	token, err := service.GenerateAccessToken(id.UserID(uuid.New()), "agent", "ana@office.pt", -time.Minute)
	require.NoError(t, err)

	_, err = service.ValidateToken(token)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	assert.Contains(t, err.Error(), "expired")
}

func TestValidateRejectsForeignSignatures(t *testing.T) {
	token, err := NewService("key-one").GenerateAccessToken(id.UserID(uuid.New()), "agent", "ana@office.pt", time.Hour)
	require.NoError(t, err)

	_, err = NewService("key-two").ValidateToken(token)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestValidateRejectsGarbage(t *testing.T) {
	service := NewService("test-signing-key")
	for _, token := range []string{"", "not-a-jwt", "aaaa.bbbb.cccc"} {
		_, err := service.ValidateToken(token)
		assert.Error(t, err, token)
	}
}
