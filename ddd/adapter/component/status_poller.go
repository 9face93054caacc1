package component

import (
	"context"
	"sync"
	"time"

	appsvc "videogen-service/ddd/application/app"
	"videogen-service/pkg/config"
	"videogen-service/pkg/logger"
	"videogen-service/pkg/manager"
	"videogen-service/pkg/task"
)

// StatusPollerPlugin 负责注册外部任务轮询的后台任务
type StatusPollerPlugin struct{}

func (p *StatusPollerPlugin) Name() string {
	return "statusPoller"
}

func (p *StatusPollerPlugin) MustCreateComponent(deps *manager.Dependencies) manager.Component {
	cfg := config.GetGlobalConfig()
	if deps != nil && deps.Config != nil {
		cfg = deps.Config
	}
	if cfg == nil || !cfg.Poller.Enabled {
		logger.Warnf("Status poller disabled, results arrive only through callbacks and provider.results")
		return nil
	}
	var app appsvc.StatusApp
	if deps != nil {
		if v, ok := deps.StatusAppService.(appsvc.StatusApp); ok {
			app = v
		}
	}
	if app == nil {
		app = appsvc.DefaultStatusApp()
	}
	return NewStatusPoller(app, cfg.Poller.Interval, task.Register)
}

type statusPoller struct {
	name     string
	app      appsvc.StatusApp
	interval time.Duration
	register func(task.BackgroundTask)
}

// NewStatusPoller register 通常为 task.Register，任务由 task.Manager 统一启停
func NewStatusPoller(app appsvc.StatusApp, interval time.Duration, register func(task.BackgroundTask)) manager.Component {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	return &statusPoller{name: "statusPoller", app: app, interval: interval, register: register}
}

func (c *statusPoller) Start() error {
	c.register(&pollLoop{name: c.name + "-generation", interval: c.interval, poll: c.app.PollGenerating})
	c.register(&pollLoop{name: c.name + "-publish", interval: c.interval, poll: c.app.PollPublishing})
	logger.Infof("Status poller registered background tasks name=%s interval=%s", c.name, c.interval)
	return nil
}

// Stop 后台任务由 task.Manager 停止，这里保持幂等
func (c *statusPoller) Stop() error {
	return nil
}

func (c *statusPoller) GetName() string {
	return c.name
}

// pollLoop 按固定间隔执行一轮轮询
type pollLoop struct {
	name     string
	interval time.Duration
	poll     func(ctx context.Context) (int, error)
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

func (l *pollLoop) Name() string { return l.name }

func (l *pollLoop) Start(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	l.cancel = cancel
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		task.RunEvery(runCtx, l.interval, l.tick)
	}()
	return nil
}

func (l *pollLoop) tick(ctx context.Context) {
	resolved, err := l.poll(ctx)
	if err != nil {
		if ctx.Err() == nil {
			logger.Warnf("Poll round failed task=%s error=%v", l.name, err)
		}
		return
	}
	if resolved > 0 {
		logger.Infof("Poll round resolved task=%s resolved=%d", l.name, resolved)
	}
}

func (l *pollLoop) Stop() error {
	if l.cancel != nil {
		l.cancel()
	}
	l.wg.Wait()
	return nil
}
