package health

import (
	"context"
	"net/http"
	"time"

	"github.com/SlpAus/plantify-backend/internal/platform/database"
	"github.com/SlpAus/plantify-backend/internal/platform/logger"
	"github.com/SlpAus/plantify-backend/pkg/lifecycle"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const checkInterval = 5 * time.Second

// Checker 定期检查数据库和Redis的连通性，并把Redis的状态写回 database 包。
type Checker struct {
	db        *gorm.DB
	pingRedis func(ctx context.Context) error
}

// NewChecker 创建健康检查器，pingRedis 为nil表示未启用Redis
func NewChecker(db *gorm.DB, pingRedis func(ctx context.Context) error) *Checker {
	return &Checker{db: db, pingRedis: pingRedis}
}

// Report 是 /api/health 的响应体
type Report struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Redis    string `json:"redis"`
}

// PerformCheck 执行一次检查。Redis只影响配额功能，不可用时整体状态为 degraded。
func (ch *Checker) PerformCheck(ctx context.Context) Report {
	report := Report{Status: "ok", Database: "up", Redis: "disabled"}

	if err := database.Ping(ch.db); err != nil {
		logger.Log.Errorf("健康检查: 数据库不可用: %v", err)
		report.Database = "down"
		report.Status = "unavailable"
	}

	if ch.pingRedis != nil {
		if err := ch.pingRedis(ctx); err != nil {
			database.UpdateStatus(false)
			report.Redis = "down"
			if report.Status == "ok" {
				report.Status = "degraded"
			}
		} else {
			database.UpdateStatus(true)
			report.Redis = "up"
		}
	}
	return report
}

// Start 在后台循环执行检查，直到收到停机信号
func (ch *Checker) Start(mgr *lifecycle.Manager) error {
	return mgr.Go("health-checker", func(h *lifecycle.Handle) {
		logger.Log.Info("健康检查器已启动。")
		h.Every(checkInterval, func(ctx context.Context) {
			ch.PerformCheck(ctx)
		})
		logger.Log.Info("健康检查器已停止。")
	})
}

// Handler 即时执行一次检查并返回结果。数据库不可用时返回503。
func (ch *Checker) Handler(c *gin.Context) {
	report := ch.PerformCheck(c.Request.Context())
	status := http.StatusOK
	if report.Database != "up" {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, report)
}
