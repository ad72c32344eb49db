package service

import (
	"errors"
	"testing"
	"time"

	"github.com/keymint/keymint-api/internal/config"
	"github.com/keymint/keymint-api/internal/ierr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestAuthService(t *testing.T, secret string) *AuthService {
	t.Helper()
	svc, err := NewAuthService(&config.AuthConfig{
		JWTSecret: secret,
		JWTTTL:    time.Hour,
	}, zap.NewNop())
	require.NoError(t, err)
	return svc
}

func TestIssueAndValidateToken(t *testing.T) {
	svc := newTestAuthService(t, "test-secret")

	token, expiresAt, err := svc.IssueToken()
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.True(t, expiresAt.After(time.Now()))

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Subject)
	assert.NotEmpty(t, claims.ID)
}

func TestValidateTokenRejectsTampered(t *testing.T) {
	svc := newTestAuthService(t, "test-secret")

	token, _, err := svc.IssueToken()
	require.NoError(t, err)

	_, err = svc.ValidateToken(token + "x")
	assert.True(t, errors.Is(err, ierr.ErrInvalidToken))
}

func TestValidateTokenRejectsForeignSecret(t *testing.T) {
	issuer := newTestAuthService(t, "secret-a")
	verifier := newTestAuthService(t, "secret-b")

	token, _, err := issuer.IssueToken()
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	assert.True(t, errors.Is(err, ierr.ErrInvalidToken))
}

func TestNewAuthServiceRequiresSecret(t *testing.T) {
	_, err := NewAuthService(&config.AuthConfig{}, zap.NewNop())
	assert.Error(t, err)
}
