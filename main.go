package main

import (
	"videogen-service/app"
	"videogen-service/pkg/observability"
)

func main() {
	observability.StartProfiling("videogen-service")
	app.Run()
}
