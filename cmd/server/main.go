package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"paperly/config"
	"paperly/internal/external"
	"paperly/internal/handler"
	"paperly/internal/model"
	"paperly/internal/repository"
	"paperly/internal/service"
	"paperly/pkg/cache"
	dbPkg "paperly/pkg/db"
	"paperly/pkg/jwt"
	"paperly/pkg/logger"
	"paperly/pkg/metrics"
	"paperly/pkg/password"
	redisPkg "paperly/pkg/redis"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

func main() {
	// 1. 加载配置
	cfg := config.LoadConfig()

	// 2. 初始化日志系统
	log, err := logger.InitLogger(cfg.Log)
	if err != nil {
		panic("初始化日志失败: " + err.Error())
	}
	defer log.Sync()

	log.Info("=== Paperly 启动 ===")
	log.Info("服务器配置信息",
		zap.String("app", cfg.App.Name),
		zap.String("version", cfg.App.Version),
		zap.String("port", cfg.Server.Port),
		zap.String("database_driver", cfg.Database.Driver),
		zap.Bool("database_url_set", cfg.Database.URL != ""),
		zap.Duration("jwt_expire_time", cfg.JWT.ExpireTime),
		zap.String("password_scheme", cfg.Password.Scheme),
		zap.String("cache_driver", cfg.Cache.Driver),
		zap.Bool("mock_enabled", cfg.External.MockEnabled),
		zap.String("log_level", cfg.Log.Level),
	)
	if cfg.JWT.Secret == "fallback-secret-key" || cfg.JWT.Secret == "change-me-in-production" {
		log.Warn("使用默认JWT密钥，请通过 JWT_SECRET_KEY 配置")
	}

	// 3. 初始化数据库连接
	cfg.Database.LogSQL = cfg.Database.LogSQL || cfg.App.Debug
	if _, err := dbPkg.InitDB(cfg.Database); err != nil {
		log.Fatal("数据库连接失败", zap.Error(err))
	}
	defer func() {
		if err := dbPkg.CloseDB(); err != nil {
			log.Error("关闭数据库连接失败", zap.Error(err))
		}
	}()
	log.Info("数据库连接成功")

	// 3.1 自动迁移表结构
	if err := dbPkg.AutoMigrate(model.All()...); err != nil {
		log.Fatal("自动迁移失败", zap.Error(err))
	}
	log.Info("自动迁移完成")

	// 3.2 搜索缓存
	searchCache, err := buildCache(cfg)
	if err != nil {
		log.Fatal("初始化搜索缓存失败", zap.Error(err))
	}
	defer func() {
		if err := redisPkg.Close(); err != nil {
			log.Error("关闭Redis连接失败", zap.Error(err))
		}
	}()

	// 3.3 初始化业务服务
	hasher, err := password.New(password.Options{
		Scheme:     password.Scheme(cfg.Password.Scheme),
		Cost:       cfg.Password.Cost,
		Secret:     cfg.JWT.Secret,
		Iterations: cfg.Password.Iterations,
		OnForeignScheme: func(s password.Scheme) {
			logger.Warn("密码哈希使用了非当前方案", zap.String("scheme", string(s)))
		},
	})
	if err != nil {
		log.Fatal("初始化密码哈希失败", zap.Error(err))
	}
	jwtSvc, err := jwt.NewJWTService(cfg.JWT)
	if err != nil {
		log.Fatal("初始化JWT失败", zap.Error(err))
	}

	orm := dbPkg.GetDB()
	userSvc := service.NewUserService(repository.NewUserRepository(orm), hasher, jwtSvc)
	paperSvc := service.NewPaperService(repository.NewPaperRepository(orm))
	searchSvc := service.NewSearchService(paperSvc, repository.NewSearchLogRepository(orm), searchCache)

	// 3.4 定时清空搜索缓存
	if cfg.Cache.FlushSchedule != "" {
		scheduler := cron.New()
		_, err := scheduler.AddFunc(cfg.Cache.FlushSchedule, func() {
			if err := searchSvc.ClearCache(context.Background()); err != nil {
				logger.Error("定时清空搜索缓存失败", zap.Error(err))
			}
		})
		if err != nil {
			log.Fatal("缓存清理计划无效", zap.String("schedule", cfg.Cache.FlushSchedule), zap.Error(err))
		}
		scheduler.Start()
		defer scheduler.Stop()
		log.Info("已启用定时清空搜索缓存", zap.String("schedule", cfg.Cache.FlushSchedule))
	}

	checks := map[string]handler.HealthChecker{
		"database": func(context.Context) error { return dbPkg.HealthCheck() },
	}
	if redisPkg.Enabled() {
		checks["redis"] = redisPkg.HealthCheck
	}

	// 4. 设置Gin模式
	if os.Getenv("GIN_MODE") == "" {
		if cfg.App.Debug {
			gin.SetMode(gin.DebugMode)
		} else {
			gin.SetMode(gin.ReleaseMode)
		}
	}

	// 5. 创建Gin路由
	router := gin.New()
	router.Use(logger.RequestIDMiddleware())
	router.Use(logger.RequestLogger())
	router.Use(logger.RecoveryMiddleware())
	router.Use(metrics.Middleware())

	// 6. 绑定路由
	handler.RegisterRoutes(router, jwtSvc, handler.Handlers{
		System:   handler.NewSystemHandler(cfg.App, checks),
		User:     handler.NewUserHandler(userSvc),
		Paper:    handler.NewPaperHandler(paperSvc, userSvc),
		Search:   handler.NewSearchHandler(searchSvc, userSvc),
		External: handler.NewExternalHandler(external.NewMock(), cfg.External.MockEnabled),
	})

	// 7. 创建HTTP服务器
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// 8. 启动HTTP服务器
	go func() {
		log.Info("HTTP服务器启动", zap.String("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP服务器启动失败", zap.Error(err))
		}
	}()

	// 9. 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("正在关闭服务器...")

	// 设置关闭超时
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// 关闭HTTP服务器
	if err := server.Shutdown(ctx); err != nil {
		log.Error("HTTP服务器关闭失败", zap.Error(err))
	}

	log.Info("服务器已安全关闭")
}

// buildCache 按配置创建搜索缓存
func buildCache(cfg *config.Config) (cache.Cache, error) {
	if cfg.Cache.Driver != "redis" {
		c, err := cache.New(cfg.Cache.Driver, cfg.Cache.Size, cfg.Cache.TTL)
		if err != nil {
			return nil, err
		}
		return cache.Instrument(c), nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	client, err := redisPkg.InitRedis(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}
	logger.Info("Redis连接成功，使用Redis搜索缓存")
	return cache.Instrument(redisPkg.NewSearchCache(client, cfg.Cache.TTL)), nil
}
