package main

import (
	"context"
	"errors"
	"flag"
	"net/http"

	"github.com/SlpAus/plantify-backend/api"
	"github.com/SlpAus/plantify-backend/internal/agent"
	"github.com/SlpAus/plantify-backend/internal/platform/config"
	"github.com/SlpAus/plantify-backend/internal/platform/database"
	"github.com/SlpAus/plantify-backend/internal/platform/health"
	"github.com/SlpAus/plantify-backend/internal/platform/logger"
	"github.com/SlpAus/plantify-backend/internal/platform/media"
	"github.com/SlpAus/plantify-backend/internal/platform/quota"
	"github.com/SlpAus/plantify-backend/internal/platform/shutdown"
	"github.com/SlpAus/plantify-backend/internal/platform/startup"
	"github.com/SlpAus/plantify-backend/pkg/lifecycle"
	"github.com/SlpAus/plantify-backend/pkg/token"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	configDir := flag.String("config", "", "配置文件所在目录")
	flag.Parse()

	var paths []string
	if *configDir != "" {
		paths = append(paths, *configDir)
	}
	cfg, err := config.LoadConfig(paths...)
	if err != nil {
		logrus.Fatalf("加载配置失败: %v", err)
	}
	if err := logger.InitLogger(cfg.Log.Level, cfg.Log.File); err != nil {
		logrus.Fatalf("初始化日志失败: %v", err)
	}
	gin.SetMode(cfg.Server.Mode)

	// 1. 连接数据库和Redis并迁移表结构
	if err := startup.InitializeApplication(cfg); err != nil {
		logger.Log.Fatalf("应用初始化失败，无法启动: %v", err)
	}

	store, err := media.NewStore(cfg.Server.MediaRoot, cfg.Server.MediaURL)
	if err != nil {
		logger.Log.Fatalf("初始化媒体目录失败: %v", err)
	}
	analyzer, generator, err := agent.New(context.Background(), cfg.Agent)
	if err != nil {
		logger.Log.Fatalf("初始化AI代理失败: %v", err)
	}

	var limiter *quota.Limiter
	if database.RDB != nil {
		limiter = quota.NewLimiter(database.RDB, cfg.Quota.AgentCallsPerHour, database.IsRedisHealthy)
	}

	// 2. 执行一次启动后健康检查，然后在后台持续检查
	var pingRedis func(context.Context) error
	if database.RDB != nil {
		pingRedis = database.PingRedis
	}
	checker := health.NewChecker(database.DB, pingRedis)
	logger.Log.Info("正在执行启动后健康检查...")
	checker.PerformCheck(context.Background())

	mgr := lifecycle.NewManager(logger.Log)
	coordinator := shutdown.NewCoordinator(mgr)
	coordinator.OnFinish(func() {
		if sqlDB, err := database.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	coordinator.OnFinish(database.CloseRedis)

	if err := checker.Start(mgr); err != nil {
		logger.Log.Fatalf("启动健康检查器失败: %v", err)
	}

	// 3. 组装路由
	r := api.NewEngine(cfg.Server)
	api.SetupRoutes(r, cfg, api.Dependencies{
		DB:        database.DB,
		Store:     store,
		Issuer:    token.NewIssuer(cfg.Auth.SecretKey, cfg.Auth.AccessTTL, cfg.Auth.RefreshTTL),
		Analyzer:  analyzer,
		Generator: generator,
		Limiter:   limiter,
		Health:    checker,
	})

	server := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: r,
	}
	go func() {
		logger.Log.Infof("服务器已准备就绪，开始监听 %s", cfg.Server.Address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatalf("服务器启动失败: %v", err)
		}
	}()

	coordinator.ListenForSignalsAndShutdown(server)
}
