package service

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-timetable-api/internal/models"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
)

func newTestAuthService() *AuthService {
	return NewAuthService(nil, AuthConfig{AccessTokenSecret: "secret", Issuer: "sma-identity"})
}

func TestAuthServiceValidateTokenRoundTrip(t *testing.T) {
	svc := newTestAuthService()
	token, err := svc.IssueToken(models.JWTClaims{UserID: "user-1", TenantID: "tenant-1", Role: models.RoleAdmin}, time.Hour)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "tenant-1", claims.TenantID)
	assert.Equal(t, models.RoleAdmin, claims.Role)
	assert.Equal(t, "sma-identity", claims.Issuer)
}

func TestAuthServiceRejectsExpiredToken(t *testing.T) {
	svc := newTestAuthService()
	past := time.Now().Add(-time.Hour)
	token, err := svc.IssueToken(models.JWTClaims{
		UserID: "user-1",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(past.Add(-time.Hour)),
			ExpiresAt: jwt.NewNumericDate(past),
		},
	}, 0)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErr.Code)
	assert.Equal(t, "token expired", appErr.Message)
}

func TestAuthServiceRejectsForeignSecretAndIssuer(t *testing.T) {
	svc := newTestAuthService()

	other := NewAuthService(nil, AuthConfig{AccessTokenSecret: "other", Issuer: "sma-identity"})
	token, err := other.IssueToken(models.JWTClaims{UserID: "user-1"}, time.Hour)
	require.NoError(t, err)
	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)

	wrongIssuer := NewAuthService(nil, AuthConfig{AccessTokenSecret: "secret", Issuer: "someone-else"})
	token, err = wrongIssuer.IssueToken(models.JWTClaims{UserID: "user-1"}, time.Hour)
	require.NoError(t, err)
	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
}

func TestAuthServiceRejectsOtherAlgorithms(t *testing.T) {
	svc := newTestAuthService()
	token := jwt.NewWithClaims(jwt.SigningMethodHS512, models.JWTClaims{
		UserID:           "user-1",
		RegisteredClaims: jwt.RegisteredClaims{Issuer: "sma-identity", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	})
	signed, err := token.SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = svc.ValidateToken(signed)
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
}
