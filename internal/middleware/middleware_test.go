package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"heritage_tree/internal/model"
	"heritage_tree/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(t *testing.T) (*gin.Engine, *service.Auth) {
	t.Helper()
	auth, err := service.NewAuth(&service.AuthConfig{SecretKey: "secret", TokenDuration: time.Hour, AdminKey: "key"}, service.NewNopLogger())
	require.NoError(t, err)

	r := gin.New()
	r.GET("/admin", AuthMiddleware(auth), RequireAdmin(), func(c *gin.Context) {
		user, _ := GetUserFromContext(c)
		c.String(http.StatusOK, user.Username)
	})
	return r, auth
}

func do(r http.Handler, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	r, auth := newRouter(t)

	adminToken, err := auth.Login("key")
	require.NoError(t, err)
	viewerToken, err := auth.GenerateToken("guest", model.RoleViewer)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + adminToken, http.StatusUnauthorized},
		{"garbage token", "Bearer nope", http.StatusUnauthorized},
		{"viewer", "Bearer " + viewerToken, http.StatusForbidden},
		{"admin", "Bearer " + adminToken, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, tt.header)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestRateLimit(t *testing.T) {
	limiter := service.NewRateLimiter(&service.RateLimitConfig{Rate: 0.001, Burst: 1}, service.NewNopLogger())
	defer limiter.Stop()

	r := gin.New()
	r.GET("/admin", RateLimit(limiter), func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, do(r, "").Code)
	assert.Equal(t, http.StatusTooManyRequests, do(r, "").Code)
}
