package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/keymint/keymint-api/internal/util"
	"go.uber.org/zap"
)

const apiKeyHeader = "X-API-KEY"

// AdminKeyAuthMiddleware guards administrative routes with the configured
// admin API key. The presented key is hashed and compared in constant time
// against the stored digest, so neither code path nor timing reveals the
// secret. The claim route is never behind this middleware.
func AdminKeyAuthMiddleware(adminKeyHash string, logger *zap.Logger) gin.HandlerFunc {
	log := logger.Named("AdminKeyAuthMiddleware")
	return func(c *gin.Context) {
		if adminKeyHash == "" {
			log.Error("auth.adminKeyHash is not configured, rejecting admin request")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		apiKey := c.GetHeader(apiKeyHeader)
		if apiKey == "" {
			log.Debug("API key header is missing", zap.String("header", apiKeyHeader))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		receivedHash := util.HashAdminKey(apiKey)
		if subtle.ConstantTimeCompare([]byte(receivedHash), []byte(adminKeyHash)) != 1 {
			log.Warn("Admin API key mismatch", zap.String("client_ip", c.ClientIP()))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		c.Next()
	}
}
