package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/keymint/keymint-api/internal/handler/dto"
	"github.com/keymint/keymint-api/internal/ierr"
	"github.com/keymint/keymint-api/internal/service"
	"go.uber.org/zap"
)

type KeyHandler struct {
	service *service.KeyService
	logger  *zap.Logger
}

func NewKeyHandler(service *service.KeyService, logger *zap.Logger) *KeyHandler {
	return &KeyHandler{
		service: service,
		logger:  logger.Named("KeyHandler"),
	}
}

func (h *KeyHandler) Create(c *gin.Context) {
	var req dto.CreateKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Failed to bind create key request", zap.Error(err))
		_ = c.Error(fmt.Errorf("%w: %v", ierr.ErrValidation, err))
		return
	}

	keyStr, err := h.service.CreateKey(c.Request.Context(), req.ProductID, req.Duration)
	if err != nil {
		_ = c.Error(err)
		return
	}

	h.logger.Info("Key created via handler", zap.String("key", keyStr))
	c.JSON(http.StatusOK, dto.CreateKeyResponse{Key: keyStr})
}

func (h *KeyHandler) Delete(c *gin.Context) {
	var req dto.DeleteKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Failed to bind delete key request", zap.Error(err))
		_ = c.Error(fmt.Errorf("%w: %v", ierr.ErrValidation, err))
		return
	}

	if err := h.service.DeleteKey(c.Request.Context(), req.Key); err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Key deleted successfully"})
}

func (h *KeyHandler) ResetHWID(c *gin.Context) {
	var req dto.ResetHWIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Failed to bind reset hwid request", zap.Error(err))
		_ = c.Error(fmt.Errorf("%w: %v", ierr.ErrValidation, err))
		return
	}

	if err := h.service.ResetHWID(c.Request.Context(), req.Key); err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: "HWID reset"})
}
