package lifecycle

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Manager 管理一组后台服务的启动登记和停机等待。
// 它由上层模块（如shutdown）创建和持有，并向各个后台服务分发句柄(Handle)。
type Manager struct {
	wg       sync.WaitGroup
	mu       sync.Mutex
	services map[string]struct{}

	ctx    context.Context
	cancel context.CancelFunc
	log    logrus.FieldLogger
}

// NewManager 创建一个新的生命周期管理器，log 为nil时使用logrus的标准实例。
func NewManager(log logrus.FieldLogger) *Manager {
	if log == nil {
		log = logrus.StandardLogger()
	}
	m := &Manager{
		services: make(map[string]struct{}),
		log:      log,
	}
	m.ctx, m.cancel = context.WithCancel(context.Background())
	return m
}

// NewServiceHandle 为一个服务登记并返回句柄。同名服务不能重复登记。
func (m *Manager) NewServiceHandle(name string) (*Handle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.services[name]; ok {
		return nil, fmt.Errorf("生命周期管理器: 服务 '%s' 已被注册", name)
	}
	m.services[name] = struct{}{}
	m.wg.Add(1)
	m.log.Debugf("生命周期管理器: 服务 [%s] 已注册。", name)

	return &Handle{
		name: name,
		ctx:  m.ctx,
		close: func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			if _, exists := m.services[name]; !exists {
				return
			}
			delete(m.services, name)
			m.wg.Done()
		},
	}, nil
}

// Go 登记服务并在新的goroutine中运行 fn，fn 返回时自动 Close。
func (m *Manager) Go(name string, fn func(h *Handle)) error {
	h, err := m.NewServiceHandle(name)
	if err != nil {
		return err
	}
	go func() {
		defer h.Close()
		fn(h)
	}()
	return nil
}

// Shutdown 广播停机信号
func (m *Manager) Shutdown() {
	m.log.Info("生命周期管理器: 广播停机信号...")
	m.cancel()
}

// WaitWithTimeout 等待所有服务退出，超时后返回仍未退出的服务名（已排序）。
func (m *Manager) WaitWithTimeout(timeout time.Duration) []string {
	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-done:
		return nil
	case <-timer.C:
		m.mu.Lock()
		defer m.mu.Unlock()
		remaining := make([]string, 0, len(m.services))
		for name := range m.services {
			remaining = append(remaining, name)
		}
		sort.Strings(remaining)
		return remaining
	}
}
