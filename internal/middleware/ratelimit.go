package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fetchtube/fetchtube/internal/metrics"
	"github.com/fetchtube/fetchtube/internal/ratelimit"
	"github.com/fetchtube/fetchtube/pkg/logger"
)

// RateLimit gates a route group behind the fixed-window limiter. Denied
// requests get 429 with the reset time so clients can back off.
func RateLimit(limiter *ratelimit.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		identifier := ratelimit.ClientIdentifier(c.Request)
		result := limiter.Check(identifier)

		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", limiter.Limit()))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", result.Remaining))
		c.Header("X-RateLimit-Reset", fmt.Sprintf("%d", result.ResetAt.Unix()))

		if !result.Allowed {
			metrics.RateLimited.Inc()
			logger.Log.Warn("rate limit exceeded",
				zap.String("identifier", identifier),
				zap.String("path", c.Request.URL.Path),
			)
			retryAfter := int(time.Until(result.ResetAt).Seconds()) + 1
			c.Header("Retry-After", fmt.Sprintf("%d", retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":   "Too many requests. Please slow down.",
				"resetAt": result.ResetAt.Unix(),
			})
			return
		}
		c.Next()
	}
}
