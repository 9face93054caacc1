package task

import (
	"context"
	"sync"
	"time"

	"videogen-service/pkg/logger"
)

// BackgroundTask 后台任务（消费者、轮询器等）
type BackgroundTask interface {
	Name() string
	Start(ctx context.Context) error
	Stop() error
}

// Manager 管理一组后台任务的启停
type Manager struct {
	tasks  []BackgroundTask
	mu     sync.Mutex
	cancel context.CancelFunc
}

var defaultManager = NewManager()

// NewManager 创建任务管理器
func NewManager() *Manager {
	return &Manager{}
}

// Register 注册后台任务，需在 StartAll 之前调用
func Register(t BackgroundTask) { defaultManager.Register(t) }

// StartAll 启动全局任务
func StartAll(ctx context.Context) error { return defaultManager.StartAll(ctx) }

// StopAll 停止全局任务
func StopAll() { defaultManager.StopAll() }

func (m *Manager) Register(t BackgroundTask) {
	if t == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks = append(m.tasks, t)
}

// StartAll 只启动一次，重复调用直接返回
func (m *Manager) StartAll(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancel != nil {
		return nil
	}
	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	for _, t := range m.tasks {
		if err := t.Start(runCtx); err != nil {
			return err
		}
		logger.Infof("Background task started name=%s", t.Name())
	}
	return nil
}

// StopAll 逆序停止
func (m *Manager) StopAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancel == nil {
		return
	}
	m.cancel()
	for i := len(m.tasks) - 1; i >= 0; i-- {
		if err := m.tasks[i].Stop(); err != nil {
			logger.Warnf("Background task stop failed name=%s error=%v", m.tasks[i].Name(), err)
		}
	}
	m.cancel = nil
}

// RunEvery 按固定间隔执行fn，直到ctx结束；启动时先执行一次
func RunEvery(ctx context.Context, interval time.Duration, fn func(ctx context.Context)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	fn(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn(ctx)
		}
	}
}
