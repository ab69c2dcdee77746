package database

import (
	"context"
	"fmt"
	"time"

	"github.com/SlpAus/plantify-backend/internal/platform/config"
	"github.com/SlpAus/plantify-backend/internal/platform/logger"
	"github.com/redis/go-redis/v9"
)

// RDB 是一个全局的Redis客户端实例，未启用Redis时为nil
var RDB *redis.Client

// InitRedis 初始化与Redis数据库的连接。
// 未启用时直接返回；启用但连不上时不阻止启动，由健康检查器把状态标记为不可用。
func InitRedis(cfg config.RedisConfig) {
	if !cfg.Enabled {
		logger.Log.Info("Redis 未启用，AI调用配额检查将被跳过。")
		return
	}

	RDB = redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := PingRedis(context.Background()); err != nil {
		UpdateStatus(false)
		logger.Log.Warnf("无法连接到Redis: %v", err)
		return
	}
	logger.Log.Info("Redis 连接成功！")
}

// PingRedis 使用Ping命令测试连接，自带超时
func PingRedis(ctx context.Context) error {
	if RDB == nil {
		return fmt.Errorf("redis 未启用")
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return RDB.Ping(ctx).Err()
}

// CloseRedis 关闭Redis客户端
func CloseRedis() {
	if RDB == nil {
		return
	}
	if err := RDB.Close(); err != nil {
		logger.Log.Warnf("关闭Redis客户端失败: %v", err)
	}
}
