// Package handler 提供家族树的 HTTP 接口。
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"heritage_tree/internal/layout"
	"heritage_tree/internal/middleware"
	"heritage_tree/internal/service"
)

// Deps 处理器依赖
type Deps struct {
	People        *service.PeopleService
	Auth          *service.Auth
	Bio           service.BioWriter    // 未配置 AI 时为 nil
	Parser        service.RecordParser // 未配置 AI 时为 nil
	Publisher     service.Publisher
	PublishTarget service.PublishTarget // 默认发布目标
	Uploads       *service.UploadService
	MaxImportSize int64 // 导入请求体上限，0 表示不限制
	Inflight      *service.Inflight
	Limiter       *service.RateLimiter
	Metrics       *service.Metrics
	View          layout.ViewConfig
	Logger        *service.Logger
}

// Handler HTTP 处理器
type Handler struct {
	deps   Deps
	errors *service.ErrorHandler
}

// New 创建处理器实例
func New(deps Deps) *Handler {
	return &Handler{
		deps:   deps,
		errors: service.NewErrorHandler(deps.Logger),
	}
}

// Register 注册路由
func (h *Handler) Register(r *gin.Engine) {
	if h.deps.Metrics != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(h.deps.Metrics.Registry(), promhttp.HandlerOpts{})))
	}
	if h.deps.Uploads != nil {
		r.Static("/uploads", h.deps.Uploads.Dir())
	}

	api := r.Group("/api")
	api.GET("/people", h.listPeople)
	api.GET("/people/:id", h.getProfile)
	api.GET("/tree", h.treeJSON)
	api.GET("/tree.svg", h.treeSVG)
	api.GET("/tree.png", h.treePNG)
	api.POST("/tree/pick", h.pick)
	api.GET("/export", h.export)
	api.POST("/admin/login", h.login)

	admin := api.Group("", middleware.AuthMiddleware(h.deps.Auth), middleware.RequireAdmin())
	admin.POST("/people", h.addPerson)
	admin.PUT("/people/:id", h.updatePerson)
	admin.DELETE("/people/:id", h.deletePerson)
	admin.POST("/import", h.importPeople)
	admin.POST("/uploads", h.uploadPhoto)

	external := admin.Group("")
	if h.deps.Limiter != nil {
		external.Use(middleware.RateLimit(h.deps.Limiter))
	}
	external.POST("/people/:id/bio", h.generateBio)
	external.POST("/ingest", h.ingest)
	external.POST("/publish", h.publish)
}

// fail 统一错误响应
func (h *Handler) fail(c *gin.Context, err error) {
	status, message := h.errors.Handle(err)
	c.JSON(status, gin.H{"error": message})
}

// badRequest 请求体无法解析
func (h *Handler) badRequest(c *gin.Context, err error) {
	h.fail(c, service.NewError(service.ErrInvalidInput, "invalid request body", err))
}

func (h *Handler) login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	token, err := h.deps.Auth.Login(req.Key)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}
