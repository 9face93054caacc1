package http

import (
	"videogen-service/ddd/application/app"
	"videogen-service/pkg/manager"
)

// 优先使用启动时注入的应用服务，未注入时回退到默认单例

func videoApp() app.VideoApp {
	if deps := manager.GetDependencies(); deps != nil {
		if v, ok := deps.VideoAppService.(app.VideoApp); ok {
			return v
		}
	}
	return app.DefaultVideoApp()
}

func batchApp() app.BatchApp {
	if deps := manager.GetDependencies(); deps != nil {
		if v, ok := deps.BatchAppService.(app.BatchApp); ok {
			return v
		}
	}
	return app.DefaultBatchApp()
}

func postApp() app.PostApp {
	if deps := manager.GetDependencies(); deps != nil {
		if v, ok := deps.PostAppService.(app.PostApp); ok {
			return v
		}
	}
	return app.DefaultPostApp()
}

func statusApp() app.StatusApp {
	if deps := manager.GetDependencies(); deps != nil {
		if v, ok := deps.StatusAppService.(app.StatusApp); ok {
			return v
		}
	}
	return app.DefaultStatusApp()
}
