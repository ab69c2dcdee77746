package database

import (
	"sync"

	"github.com/SlpAus/plantify-backend/internal/platform/logger"
)

// statusManager 负责线程安全地管理Redis的健康状态。
type statusManager struct {
	mu             sync.RWMutex
	isRedisHealthy bool
}

var globalStatus = &statusManager{
	isRedisHealthy: true,
}

// IsRedisHealthy 返回当前Redis是否可用。未启用Redis时总是返回false。
func IsRedisHealthy() bool {
	if RDB == nil {
		return false
	}
	globalStatus.mu.RLock()
	defer globalStatus.mu.RUnlock()
	return globalStatus.isRedisHealthy
}

// UpdateStatus 用于线程安全地更新健康状态，只在状态变化时打印日志。
func UpdateStatus(isHealthy bool) {
	globalStatus.mu.Lock()
	defer globalStatus.mu.Unlock()

	if globalStatus.isRedisHealthy == isHealthy {
		return
	}
	globalStatus.isRedisHealthy = isHealthy
	if isHealthy {
		logger.Log.Info("健康检查: Redis服务状态已更新为 [可用]")
	} else {
		logger.Log.Warn("健康检查警告: Redis服务状态已更新为 [不可用]")
	}
}
