package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"heritage_tree/internal/service"
)

// RateLimit 按客户端 IP 限流
func RateLimit(limiter *service.RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow(c.ClientIP()) {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests"})
			c.Abort()
			return
		}
		c.Next()
	}
}
