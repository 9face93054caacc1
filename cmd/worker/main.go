package main

import (
	"videogen-service/app"
	"videogen-service/pkg/observability"
)

// 独立部署轮询与结果消费，HTTP 实例可关闭 poller.enabled
func main() {
	observability.StartProfiling("videogen-worker")
	app.RunWorker()
}
