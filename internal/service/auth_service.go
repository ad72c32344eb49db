package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/keymint/keymint-api/internal/config"
	"github.com/keymint/keymint-api/internal/ierr"
	"go.uber.org/zap"
)

// AuthService issues and verifies short-lived HS256 session tokens for the
// admin dashboard. Tokens are obtained by presenting the admin API key.
type AuthService struct {
	secret []byte
	ttl    time.Duration
	logger *zap.Logger
}

func NewAuthService(cfg *config.AuthConfig, logger *zap.Logger) (*AuthService, error) {
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("auth.jwtSecret is required")
	}
	return &AuthService{
		secret: []byte(cfg.JWTSecret),
		ttl:    cfg.JWTTTL,
		logger: logger.Named("AuthService"),
	}, nil
}

// IssueToken mints an admin session token.
func (s *AuthService) IssueToken() (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.ttl)

	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   "admin",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		s.logger.Error("Failed to sign session token", zap.Error(err))
		return "", time.Time{}, fmt.Errorf("%w: %v", ierr.ErrInternalServer, err)
	}

	s.logger.Info("Admin session token issued", zap.String("jti", claims.ID), zap.Time("expires_at", expiresAt))
	return signed, expiresAt, nil
}

// ValidateToken parses and verifies a session token.
func (s *AuthService) ValidateToken(raw string) (*jwt.RegisteredClaims, error) {
	var claims jwt.RegisteredClaims

	token, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		s.logger.Warn("Session token validation failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ierr.ErrInvalidToken, err)
	}

	return &claims, nil
}
