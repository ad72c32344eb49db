package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/keymint/keymint-api/internal/domain/key"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type HealthHandler struct {
	keys   key.Repository
	redis  *redis.Client
	logger *zap.Logger
}

func NewHealthHandler(keys key.Repository, redisClient *redis.Client, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		keys:   keys,
		redis:  redisClient,
		logger: logger,
	}
}

func (h *HealthHandler) Check(c *gin.Context) {
	storageStatus := "ok"
	if _, err := h.keys.List(c.Request.Context()); err != nil {
		storageStatus = "error"
		h.logger.Error("Health check: key store probe failed", zap.Error(err))
	}

	redisStatus := "ok"
	if h.redis != nil {
		if _, err := h.redis.Ping(c.Request.Context()).Result(); err != nil {
			redisStatus = "error"
			h.logger.Error("Health check: Redis ping failed", zap.Error(err))
		}
	}

	status := http.StatusOK
	overall := "ok"
	if storageStatus == "error" || redisStatus == "error" {
		status = http.StatusServiceUnavailable
		overall = "unhealthy"
	}

	c.JSON(status, gin.H{
		"status": overall,
		"dependencies": gin.H{
			"storage": storageStatus,
			"redis":   redisStatus,
		},
	})
}
