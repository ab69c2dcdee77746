package api

import (
	"time"

	"github.com/SlpAus/plantify-backend/internal/agent"
	"github.com/SlpAus/plantify-backend/internal/community"
	"github.com/SlpAus/plantify-backend/internal/dashboard"
	"github.com/SlpAus/plantify-backend/internal/diagnosis"
	"github.com/SlpAus/plantify-backend/internal/logbook"
	"github.com/SlpAus/plantify-backend/internal/platform/config"
	"github.com/SlpAus/plantify-backend/internal/platform/health"
	"github.com/SlpAus/plantify-backend/internal/platform/logger"
	"github.com/SlpAus/plantify-backend/internal/platform/media"
	"github.com/SlpAus/plantify-backend/internal/platform/quota"
	"github.com/SlpAus/plantify-backend/internal/platform/telemetry"
	"github.com/SlpAus/plantify-backend/internal/user"
	"github.com/SlpAus/plantify-backend/internal/vision"
	"github.com/SlpAus/plantify-backend/pkg/token"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Dependencies 是路由层需要的外部依赖，由 main 负责构造
type Dependencies struct {
	DB        *gorm.DB
	Store     *media.Store
	Issuer    *token.Issuer
	Analyzer  agent.VisionAnalyzer
	Generator agent.DiagnosisGenerator
	Limiter   *quota.Limiter
	Health    *health.Checker
}

// NewEngine 创建gin引擎并挂载公共中间件
func NewEngine(cfg config.ServerConfig) *gin.Engine {
	r := gin.New()
	r.Use(logger.GinMiddleware(), gin.Recovery(), telemetry.Middleware())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Cors.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.MaxMultipartMemory = cfg.MaxUploadMB << 20
	return r
}

// SetupRoutes 注册项目的所有API路由
func SetupRoutes(router *gin.Engine, cfg *config.Config, deps Dependencies) {
	users := user.NewService(deps.DB, deps.Issuer)
	users.OnAccountDelete(vision.ImagePathsOwnedBy, deps.Store.Remove)
	auth := users.RequireAuth()

	scans := vision.NewService(deps.DB, deps.Store, deps.Analyzer, cfg.Agent.Country)
	diagnoses := diagnosis.NewService(deps.DB, scans, deps.Store, deps.Generator, deps.Limiter, diagnosis.Options{
		Country:        cfg.Agent.Country,
		RegulationHint: cfg.Agent.RegulationHint,
	})

	api := router.Group("/api")
	{
		user.NewHandler(users).RegisterRoutes(api)
		vision.NewHandler(scans, cfg.Server.MaxUploadMB).RegisterRoutes(api, auth)
		diagnosis.NewHandler(diagnoses).RegisterRoutes(api, auth)
		community.NewHandler(community.NewService(deps.DB)).RegisterRoutes(api, auth)
		logbook.NewHandler(logbook.NewService(deps.DB)).RegisterRoutes(api, auth)
		dashboard.NewHandler(dashboard.NewAggregator(deps.DB)).RegisterRoutes(api, auth)

		if deps.Health != nil {
			api.GET("/health", deps.Health.Handler)
		}
	}

	router.GET("/metrics", telemetry.Handler())
	router.Static(cfg.Server.MediaURL, cfg.Server.MediaRoot)
}
