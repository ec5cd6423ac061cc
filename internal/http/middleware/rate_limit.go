package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/promptshare/authsvc/domain"
)

// RateLimitMiddleware meters requests under the auth prefix by client
// address. All other traffic bypasses the limiter entirely.
func RateLimitMiddleware(limiter domain.RateLimiter, authPrefix string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil || !strings.HasPrefix(c.Request.URL.Path, authPrefix) {
			c.Next()
			return
		}

		meta := RequestMeta(c)
		allowed, retryAfter := limiter.Admit(meta.IPAddress)
		if !allowed {
			seconds := int(retryAfter / time.Second)
			if seconds < 1 {
				seconds = 1
			}
			c.Header("Retry-After", fmt.Sprintf("%d", seconds))
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded"})
			c.Abort()
			return
		}

		c.Next()
	}
}
