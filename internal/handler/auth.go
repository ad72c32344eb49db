package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/keymint/keymint-api/internal/handler/dto"
	"github.com/keymint/keymint-api/internal/service"
	"go.uber.org/zap"
)

type AuthHandler struct {
	service *service.AuthService
	logger  *zap.Logger
}

func NewAuthHandler(service *service.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		logger:  logger.Named("AuthHandler"),
	}
}

// Token exchanges a valid admin API key (checked by the admin key
// middleware in front of this route) for a short-lived session token used
// by the dashboard.
func (h *AuthHandler) Token(c *gin.Context) {
	token, expiresAt, err := h.service.IssueToken()
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.TokenResponse{
		AccessToken: token,
		ExpiresAt:   expiresAt,
	})
}
