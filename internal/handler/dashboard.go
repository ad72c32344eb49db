package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/keymint/keymint-api/internal/service"
	"go.uber.org/zap"
)

type DashboardHandler struct {
	keyService *service.KeyService
	logger     *zap.Logger
}

func NewDashboardHandler(keyService *service.KeyService, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{
		keyService: keyService,
		logger:     logger.Named("DashboardHandler"),
	}
}

func (h *DashboardHandler) GetSummary(c *gin.Context) {
	summary, err := h.keyService.DashboardSummary(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to build dashboard summary", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve dashboard summary"})
		return
	}

	c.JSON(http.StatusOK, summary)
}
