package handler

import (
	"paperly/internal/external"
	"paperly/pkg/jwt"
	"paperly/pkg/metrics"

	"github.com/gin-gonic/gin"
)

// Handlers 路由依赖的全部处理器
type Handlers struct {
	System   *SystemHandler
	User     *UserHandler
	Paper    *PaperHandler
	Search   *SearchHandler
	External *ExternalHandler
}

// RegisterRoutes 注册全部路由
func RegisterRoutes(router *gin.Engine, jwtSvc *jwt.JWTService, h Handlers) {
	// 基础路由
	router.GET("/", h.System.Root)
	router.GET("/health", h.System.Health)
	router.GET("/info", h.System.Info)
	router.GET("/metrics", metrics.Handler())
	router.NoRoute(h.System.NotFound)

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			// 公开接口（无需认证）
			auth.POST("/register", h.User.Register)
			auth.POST("/login", h.User.Login)
			auth.POST("/login-json", h.User.LoginJSON)

			// 需要认证的接口
			authed := auth.Group("")
			authed.Use(jwtSvc.AuthMiddleware())
			{
				authed.GET("/profile", h.User.Profile)
				authed.GET("/verify", h.User.Verify)
			}
		}

		papers := v1.Group("/papers")
		{
			papers.GET("", h.Paper.List)
			papers.GET("/popular", h.Paper.Popular)
			papers.GET("/:id", h.Paper.Get)

			// 可选认证：登录用户记为创建者并参与权限判断
			writes := papers.Group("")
			writes.Use(jwtSvc.OptionalAuthMiddleware())
			{
				writes.POST("", h.Paper.Create)
				writes.PUT("/:id", h.Paper.Update)
				writes.DELETE("/:id", h.Paper.Delete)
			}
		}

		search := v1.Group("/search")
		{
			search.GET("/suggestions", h.Search.Suggestions)
			search.GET("/papers", jwtSvc.OptionalAuthMiddleware(), h.Search.Papers)
			search.GET("/authors", jwtSvc.OptionalAuthMiddleware(), h.Search.Authors)
			search.DELETE("/cache", jwtSvc.AuthMiddleware(), h.Search.ClearCache)
		}

		ext := v1.Group("/external")
		{
			ext.GET("/papers", h.External.SearchAll)
			ext.GET("/arxiv", h.External.Source(external.SourceArxiv, "deep learning"))
			ext.GET("/ieee", h.External.Source(external.SourceIEEE, "computer vision"))
			ext.GET("/acm", h.External.Source(external.SourceACM, "software engineering"))
		}
	}
}
