package lifecycle

import (
	"context"
	"time"
)

// Handle 是分发给每个后台服务的生命周期句柄。
// 服务在退出前必须调用 Close，否则 Manager 会一直等待到超时。
type Handle struct {
	name  string
	ctx   context.Context
	close func()
}

// Name 返回服务注册时使用的名字
func (h *Handle) Name() string {
	return h.name
}

// Ctx 返回随停机信号取消的上下文
func (h *Handle) Ctx() context.Context {
	return h.ctx
}

// Done 在停机信号广播后关闭
func (h *Handle) Done() <-chan struct{} {
	return h.ctx.Done()
}

// Close 通知Manager该服务已退出，可重复调用
func (h *Handle) Close() {
	h.close()
}

// Sleep 暂停指定时长，停机信号到达时提前返回上下文的错误。
func (h *Handle) Sleep(d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-h.Done():
		return h.ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Every 以固定间隔执行 fn，直到停机信号到达。fn 的执行时间不计入间隔。
func (h *Handle) Every(interval time.Duration, fn func(ctx context.Context)) {
	for {
		if err := h.Sleep(interval); err != nil {
			return
		}
		fn(h.ctx)
	}
}
