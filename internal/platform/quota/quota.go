// Package quota 实现每个用户的AI调用滑动窗口配额。
// 计数存放在Redis的有序集合中：score 为调用时间(微秒)，member 为一次调用的唯一ID。
package quota

import (
	"context"
	"fmt"
	"time"

	"github.com/SlpAus/plantify-backend/internal/platform/apperr"
	"github.com/SlpAus/plantify-backend/internal/platform/logger"
	"github.com/SlpAus/plantify-backend/internal/platform/telemetry"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// keyPrefix 是Redis中有序集合的键名前缀
	keyPrefix = "agent_calls:"
	// window 定义了计数的时间窗口
	window = time.Hour
	// keyTTL 比窗口稍长以作缓冲
	keyTTL = window + 5*time.Minute
)

// Limiter 在调用AI代理前预占一次配额。
// rdb 为nil或 limit<=0 时配额检查被关闭，Reserve 总是放行。
type Limiter struct {
	rdb     *redis.Client
	limit   int
	healthy func() bool
}

// NewLimiter 创建配额检查器，healthy 用于在Redis不可用时直接放行
func NewLimiter(rdb *redis.Client, limit int, healthy func() bool) *Limiter {
	if healthy == nil {
		healthy = func() bool { return true }
	}
	return &Limiter{rdb: rdb, limit: limit, healthy: healthy}
}

// Compensator 封装了一次配额占用的回滚逻辑。
// 业务流程失败时通过 defer RollbackUnlessCommitted 归还本次占用。
type Compensator struct {
	rdb       *redis.Client
	key       string
	member    string
	committed bool
}

func key(userID uint) string {
	return fmt.Sprintf("%s%d", keyPrefix, userID)
}

// Reserve 原子地记录一次调用并检查窗口内的总数。
// 超出配额时返回 apperr.RateLimited，且本次记录已被移除。
func (l *Limiter) Reserve(ctx context.Context, userID uint, now time.Time) (*Compensator, error) {
	if l == nil || l.rdb == nil || l.limit <= 0 {
		return &Compensator{}, nil
	}
	if !l.healthy() {
		logger.Log.Warnf("Redis不可用，跳过用户 %d 的AI调用配额检查", userID)
		return &Compensator{}, nil
	}

	k := key(userID)
	minScore := float64(now.Add(-window).UnixMicro())
	member, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("生成配额记录ID失败: %w", err)
	}

	// 使用Redis事务(TxPipeline)来保证所有操作的原子性
	pipe := l.rdb.TxPipeline()
	pipe.ZRemRangeByScore(ctx, k, "-inf", fmt.Sprintf("(%f", minScore))
	pipe.ZAdd(ctx, k, redis.Z{Score: float64(now.UnixMicro()), Member: member.String()})
	pipe.Expire(ctx, k, keyTTL)
	countCmd := pipe.ZCard(ctx, k)
	if _, err := pipe.Exec(ctx); err != nil {
		// 配额只是保护措施，Redis出错时放行
		logger.Log.Warnf("执行配额计数事务失败，放行本次调用: %v", err)
		return &Compensator{}, nil
	}

	comp := &Compensator{rdb: l.rdb, key: k, member: member.String()}
	if countCmd.Val() > int64(l.limit) {
		comp.RollbackUnlessCommitted()
		telemetry.IncQuotaRejection()
		return nil, apperr.RateLimited("Batas penggunaan AI per jam tercapai. Coba lagi nanti.")
	}
	return comp, nil
}

// Commit 标记上层业务已成功，阻止后续的回滚操作。
func (c *Compensator) Commit() {
	c.committed = true
}

// RollbackUnlessCommitted 在 Commit 未被调用时移除本次占用的记录。
func (c *Compensator) RollbackUnlessCommitted() {
	if c == nil || c.committed || c.rdb == nil {
		return
	}
	c.committed = true
	// 主流程可能已因ctx取消而失败，这里使用独立的上下文
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := c.rdb.ZRem(ctx, c.key, c.member).Err(); err != nil {
		logger.Log.Errorf("配额补偿操作失败! Key: %s, Member: %s, 错误: %v", c.key, c.member, err)
	}
}
