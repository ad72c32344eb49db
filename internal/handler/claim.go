package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/keymint/keymint-api/internal/handler/dto"
	"github.com/keymint/keymint-api/internal/ierr"
	"github.com/keymint/keymint-api/internal/service"
	"go.uber.org/zap"
)

type ClaimHandler struct {
	service *service.ClaimService
	logger  *zap.Logger
}

func NewClaimHandler(service *service.ClaimService, logger *zap.Logger) *ClaimHandler {
	return &ClaimHandler{
		service: service,
		logger:  logger.Named("ClaimHandler"),
	}
}

// Claim is the only unauthenticated route: end-user clients redeem a key
// here, binding it to their hardware id.
func (h *ClaimHandler) Claim(c *gin.Context) {
	var req dto.ClaimKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Failed to bind claim request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Key and HWID are required"})
		return
	}

	result, err := h.service.Claim(c.Request.Context(), req.Key, req.HWID, c.ClientIP())
	if err != nil {
		// Unknown keys are reported as bad input on this route, not 404.
		if errors.Is(err, ierr.ErrKeyNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid key"})
			return
		}
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.ClaimKeyResponse{
		Key:       result.Key,
		Product:   result.Product,
		ExpiresAt: result.ExpiresAt,
	})
}
