package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/keymint/keymint-api/internal/ierr"
	"go.uber.org/zap"
)

// ErrorHandlerMiddleware maps errors attached to the gin context onto the
// wire contract: an {"error": message} body with a 4xx/5xx status. Storage
// and unexpected errors collapse to a generic 500 so internals never leak.
func ErrorHandlerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	log := logger.Named("ErrorHandler")
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err

		status := http.StatusInternalServerError
		message := "Internal Server Error"

		var ve validator.ValidationErrors

		switch {
		case errors.As(err, &ve), errors.Is(err, ierr.ErrValidation):
			status = http.StatusBadRequest
			message = "Invalid request body"
		case errors.Is(err, ierr.ErrInvalidDuration):
			status = http.StatusBadRequest
			message = "Invalid duration format"
		case errors.Is(err, ierr.ErrInvalidProduct):
			status = http.StatusBadRequest
			message = "Invalid product ID"
		case errors.Is(err, ierr.ErrAlreadyExists):
			status = http.StatusBadRequest
			message = "Product already exists"
		case errors.Is(err, ierr.ErrUnauthorized), errors.Is(err, ierr.ErrInvalidToken):
			status = http.StatusUnauthorized
			message = "Unauthorized"
		case errors.Is(err, ierr.ErrHwidMismatch):
			status = http.StatusForbidden
			message = "HWID mismatch"
		case errors.Is(err, ierr.ErrKeyExpired):
			status = http.StatusForbidden
			message = "Key expired"
		case errors.Is(err, ierr.ErrKeyNotFound):
			status = http.StatusNotFound
			message = "Key not found"
		case errors.Is(err, ierr.ErrProductNotFound):
			status = http.StatusNotFound
			message = "Product not found"
		case errors.Is(err, ierr.ErrNotFound):
			status = http.StatusNotFound
			message = "Not found"
		}

		if status == http.StatusInternalServerError {
			log.Error("Request failed", zap.Error(err))
		} else {
			log.Debug("Request rejected", zap.Int("status", status), zap.Error(err))
		}

		c.AbortWithStatusJSON(status, gin.H{"error": message})
	}
}
