package shutdown

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SlpAus/plantify-backend/internal/platform/logger"
	"github.com/SlpAus/plantify-backend/pkg/lifecycle"
)

const (
	httpTimeout       = 15 * time.Second
	backgroundTimeout = 10 * time.Second
)

// Coordinator 负责编排应用程序的优雅停机流程：
// 先关闭HTTP服务器让进行中的请求完成，再停止后台服务，最后执行收尾函数。
type Coordinator struct {
	Manager   *lifecycle.Manager
	finalizer []func()
}

// NewCoordinator 创建一个新的停机协调器。
func NewCoordinator(mgr *lifecycle.Manager) *Coordinator {
	return &Coordinator{Manager: mgr}
}

// OnFinish 注册一个在所有服务停止后执行的收尾函数（例如关闭数据库连接），按注册的逆序执行。
func (c *Coordinator) OnFinish(fn func()) {
	c.finalizer = append(c.finalizer, fn)
}

// ListenForSignalsAndShutdown 阻塞直到收到 SIGINT/SIGTERM，然后完成停机流程。
func (c *Coordinator) ListenForSignalsAndShutdown(server *http.Server) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	logger.Log.Info("收到关闭信号，开始优雅停机...")
	c.Shutdown(server)
}

// Shutdown 执行停机流程
func (c *Coordinator) Shutdown(server *http.Server) {
	if server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), httpTimeout)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			logger.Log.Errorf("HTTP服务器关闭错误: %v", err)
		} else {
			logger.Log.Info("HTTP服务器已关闭。")
		}
	}

	c.Manager.Shutdown()
	if remaining := c.Manager.WaitWithTimeout(backgroundTimeout); len(remaining) > 0 {
		logger.Log.Warnf("以下后台服务未能在 %v 内退出: %v", backgroundTimeout, remaining)
	}

	for i := len(c.finalizer) - 1; i >= 0; i-- {
		c.finalizer[i]()
	}
	logger.Log.Info("优雅停机完成。")
}
