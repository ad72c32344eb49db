package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/keymint/keymint-api/internal/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RateLimitMiddleware enforces a fixed-window per-client request budget
// backed by redis. The window counter lives under one key per client IP and
// minute and expires on its own. Redis being down fails open: claim
// availability wins over throttling accuracy.
func RateLimitMiddleware(client *redis.Client, cfg *config.RateLimitConfig, logger *zap.Logger) gin.HandlerFunc {
	log := logger.Named("RateLimitMiddleware")
	return func(c *gin.Context) {
		if !cfg.Enabled {
			c.Next()
			return
		}

		window := time.Now().Unix() / 60
		redisKey := fmt.Sprintf("ratelimit:%s:%d", c.ClientIP(), window)

		count, err := client.Incr(c.Request.Context(), redisKey).Result()
		if err != nil {
			log.Warn("Rate limit counter unavailable, allowing request", zap.Error(err))
			c.Next()
			return
		}
		if count == 1 {
			client.Expire(c.Request.Context(), redisKey, time.Minute)
		}

		if count > int64(cfg.PerMinute) {
			log.Info("Rate limit exceeded", zap.String("client_ip", c.ClientIP()), zap.Int64("count", count))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded"})
			return
		}

		c.Next()
	}
}
