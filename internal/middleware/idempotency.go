package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shibam-max/payment-processing-platform/internal/interfaces"
	"github.com/shibam-max/payment-processing-platform/internal/models"
)

const (
	// ContextKey carries the request's idempotency key to the handler.
	ContextKey = "idempotency_key"

	keyPrefix = "idempotency:"
)

// ReplayKey builds the cache key a recorded response is stored under.
func ReplayKey(idempotencyKey string) string {
	return keyPrefix + idempotencyKey
}

// Idempotency replays the recorded response when a request carries an
// Idempotency-Key header already seen. The header is optional; requests
// without it pass straight through.
func Idempotency(cache interfaces.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader("Idempotency-Key")
		if key == "" {
			c.Next()
			return
		}

		var recorded models.PaymentResponse
		if cache.Get(c.Request.Context(), ReplayKey(key), &recorded) {
			c.JSON(http.StatusOK, recorded)
			c.Abort()
			return
		}

		c.Set(ContextKey, key)
		c.Next()
	}
}
