package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"heritage_tree/internal/model"
	"heritage_tree/internal/service"
)

type contextKey string

const (
	UserContextKey contextKey = "user"
)

// AuthMiddleware 认证中间件
func AuthMiddleware(auth *service.Auth) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			c.Abort()
			return
		}

		claims, err := auth.ValidateToken(parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			c.Abort()
			return
		}

		c.Set(string(UserContextKey), claims.User())
		c.Next()
	}
}

// RequireAdmin 要求管理员角色，需在 AuthMiddleware 之后使用
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := GetUserFromContext(c)
		if !ok || !user.IsAdmin() {
			c.JSON(http.StatusForbidden, gin.H{"error": "Admin privilege is required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetUserFromContext 从上下文中获取用户信息
func GetUserFromContext(c *gin.Context) (*model.User, bool) {
	v, ok := c.Get(string(UserContextKey))
	if !ok {
		return nil, false
	}
	user, ok := v.(*model.User)
	return user, ok
}
