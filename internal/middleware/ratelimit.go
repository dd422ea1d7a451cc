package middleware

import (
	"net/http"
	"time"

	"mingle/backend/internal/cache"

	"github.com/gin-gonic/gin"
)

// RateLimit caps requests per client IP per second, backed by redis so the
// window holds across handler replicas. A no-op when redis is not configured.
func RateLimit(maxRequests int) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !cache.Enabled() {
			c.Next()
			return
		}

		key := "ratelimit:" + c.ClientIP()
		count, _ := cache.Redis.Get(c.Request.Context(), key).Int()
		if count >= maxRequests {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests"})
			c.Abort()
			return
		}
		cache.Redis.Incr(c.Request.Context(), key)
		cache.Redis.Expire(c.Request.Context(), key, time.Second)
		c.Next()
	}
}
