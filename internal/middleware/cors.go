package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// CORS allows cross-origin calls to the API. origins is a
// comma-separated allowlist; empty or "*" allows every origin. The
// rate-limit headers are exposed so browser clients can back off.
func CORS(origins string) gin.HandlerFunc {
	allowed := []string{"*"}
	if origins != "" && origins != "*" {
		allowed = strings.Split(origins, ",")
		for i, o := range allowed {
			allowed[i] = strings.TrimSpace(o)
		}
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" {
			if value, ok := allowOrigin(allowed, origin); ok {
				c.Header("Access-Control-Allow-Origin", value)
				c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
				c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept")
				c.Header("Access-Control-Expose-Headers", "X-RateLimit-Limit, X-RateLimit-Remaining, X-RateLimit-Reset, Retry-After")
				c.Header("Access-Control-Max-Age", "86400")
			}
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func allowOrigin(allowed []string, origin string) (string, bool) {
	for _, o := range allowed {
		if o == "*" {
			return "*", true
		}
		if strings.EqualFold(o, origin) {
			return origin, true
		}
	}
	return "", false
}
