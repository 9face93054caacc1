package http

import (
	"time"

	"github.com/gin-gonic/gin"

	"videogen-service/pkg/config"
	"videogen-service/pkg/manager"
	"videogen-service/pkg/metrics"
	"videogen-service/pkg/middleware"
)

// NewRouter 创建 gin 引擎并挂载全部控制器
func NewRouter(cfg *config.Config) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	engine := gin.New()
	SetupMiddleware(engine)

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":    "ok",
			"service":   cfg.ServiceRegistry.ServiceName,
			"timestamp": time.Now().Unix(),
		})
	})
	engine.GET("/metrics", metrics.Handler())

	manager.RegisterAllRoutes(engine, middleware.AuthMiddleware(cfg.JWT))
	return engine
}

// SetupMiddleware 设置全局中间件
func SetupMiddleware(engine *gin.Engine) {
	// CORS中间件
	engine.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, X-User-UUID, X-Request-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestContextMiddleware())
}
