package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fetchtube/fetchtube/internal/metrics"
	"github.com/fetchtube/fetchtube/pkg/logger"
)

// RequestLogger logs one line per request and feeds the request
// counter. Download responses stream for a while, so the duration field
// covers the full relay, not just handler dispatch.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		status := c.Writer.Status()
		metrics.RequestsTotal.WithLabelValues(path, strconv.Itoa(status)).Inc()
		logger.Log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("duration", time.Since(start)),
			zap.String("clientIp", c.ClientIP()),
		)
	}
}
