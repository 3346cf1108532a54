package handler

import (
	"context"
	"time"

	"paperly/config"
	"paperly/internal/external"
	"paperly/pkg/response"

	"github.com/gin-gonic/gin"
)

// HealthChecker 依赖健康检查
type HealthChecker func(ctx context.Context) error

// SystemHandler 根路径、健康检查与服务信息
type SystemHandler struct {
	app    config.AppConfig
	checks map[string]HealthChecker
}

// NewSystemHandler checks 的键为依赖名称，例如 database、redis
func NewSystemHandler(app config.AppConfig, checks map[string]HealthChecker) *SystemHandler {
	return &SystemHandler{app: app, checks: checks}
}

// Root 欢迎信息
func (h *SystemHandler) Root(c *gin.Context) {
	response.SuccessWithMessage(c, "Welcome to "+h.app.Name+" v"+h.app.Version, gin.H{
		"name":    h.app.Name,
		"version": h.app.Version,
	})
}

// Health 健康检查；任一依赖异常时 status 为 degraded
func (h *SystemHandler) Health(c *gin.Context) {
	status := "healthy"
	deps := gin.H{}
	for name, check := range h.checks {
		if err := check(c.Request.Context()); err != nil {
			status = "degraded"
			deps[name] = "down"
			continue
		}
		deps[name] = "up"
	}
	response.Success(c, gin.H{
		"status":       status,
		"version":      h.app.Version,
		"timestamp":    time.Now().UTC().Format(time.RFC3339),
		"dependencies": deps,
	})
}

// Info 服务能力说明
func (h *SystemHandler) Info(c *gin.Context) {
	sources := make([]string, 0, len(external.Sources))
	for _, s := range external.Sources {
		sources = append(sources, s.DisplayName())
	}
	response.Success(c, gin.H{
		"name":        h.app.Name,
		"version":     h.app.Version,
		"description": "Academic paper catalog service",
		"features": []string{
			"Academic paper management",
			"Paper and author search",
			"JWT authentication",
			"External repository mock",
			"Prometheus metrics",
		},
		"endpoints": gin.H{
			"health":   "/health",
			"metrics":  "/metrics",
			"papers":   "/api/v1/papers",
			"search":   "/api/v1/search/papers",
			"auth":     "/api/v1/auth",
			"external": "/api/v1/external",
		},
		"mock_repositories": sources,
	})
}

// NotFound 未匹配路由
func (h *SystemHandler) NotFound(c *gin.Context) {
	response.NotFound(c, "resource not found")
}
