package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	httpAdapter "videogen-service/ddd/adapter/http"
	appsvc "videogen-service/ddd/application/app"
	"videogen-service/pkg/config"
	"videogen-service/pkg/logger"
	"videogen-service/pkg/manager"
	"videogen-service/pkg/observability"
	"videogen-service/pkg/registry"
	"videogen-service/pkg/task"

	"videogen-service/internal/resource"

	// 导入组件包以触发init函数
	_ "videogen-service/ddd/adapter/component"
)

const serviceName = "videogen-service"

// Run 启动 HTTP 服务和后台组件
func Run() {
	cfg, logService := bootstrap()
	defer logService.Close()
	defer manager.CloseResources()

	stopBackground := startBackground(cfg)

	router := httpAdapter.NewRouter(cfg)
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal(fmt.Sprintf("Failed to start HTTP server error=%v", err))
		}
	}()
	logger.Infof("HTTP server started addr=%s health_url=%s api_url=%s", addr,
		fmt.Sprintf("http://%s/health", addr), fmt.Sprintf("http://%s/api/v1", addr))

	svcRegistry := registerService(cfg)

	waitForSignal()
	logger.Infof("Received shutdown signal, shutting down server...")

	if svcRegistry != nil {
		if err := svcRegistry.Deregister(); err != nil {
			logger.Warnf("Service deregister failed error=%v", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to close error=%v", err)
	}
	stopBackground()
	logger.Infof("Server exited safely")
}

// RunWorker 只运行轮询和结果消费，不对外提供 HTTP 接口
func RunWorker() {
	cfg, logService := bootstrap()
	defer logService.Close()
	defer manager.CloseResources()

	stopBackground := startBackground(cfg)
	logger.Infof("Worker started poller_enabled=%t kafka_enabled=%t", cfg.Poller.Enabled, cfg.Kafka.Enabled)

	waitForSignal()
	logger.Infof("Received shutdown signal, stopping worker...")
	stopBackground()
	logger.Infof("Worker exited safely")
}

// bootstrap 加载配置、初始化日志和资源，并注入应用服务
func bootstrap() (*config.Config, *logger.Logger) {
	fmt.Println("[STARTUP] Starting videogen service...")

	cfgPath := resolveConfigPath()
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Printf("[ERROR] Failed to load config (%s): %v\n", cfgPath, err)
		os.Exit(1)
	}
	// 设置全局配置（必须在资源管理器初始化之前）
	config.SetGlobalConfig(cfg)

	logService := logger.NewLogger(cfg)
	logger.SetGlobalLogger(logService)
	logger.Debug("Logger initialized", map[string]interface{}{
		"level":  cfg.Log.Level,
		"format": cfg.Log.Format,
		"output": cfg.Log.Output,
		"config": cfgPath,
	})

	// 环境变量方式已在 main 中启动
	if cfg.Observability.PyroscopeEnabled && cfg.Observability.PyroscopeAddress != "" && os.Getenv("PYROSCOPE_SERVER_ADDRESS") == "" {
		observability.StartProfilingAt(serviceName, cfg.Observability.PyroscopeAddress)
	}

	logger.Infof("Initializing resource manager...")
	manager.MustInitResources()

	manager.MustInitServices(&manager.Dependencies{
		DB:               resource.DefaultMysqlResource().MainDB(),
		Config:           cfg,
		VideoAppService:  appsvc.DefaultVideoApp(),
		BatchAppService:  appsvc.DefaultBatchApp(),
		PostAppService:   appsvc.DefaultPostApp(),
		StatusAppService: appsvc.DefaultStatusApp(),
	})
	logger.Info("Application services initialized", map[string]interface{}{
		"strict_completion": cfg.Batch.StrictCompletion,
		"max_items":         cfg.Batch.MaxItems,
	})
	return cfg, logService
}

// startBackground 启动组件和后台任务，返回逆序停止函数
func startBackground(cfg *config.Config) func() {
	manager.MustInitComponents(manager.GetDependencies())
	if err := task.StartAll(context.Background()); err != nil {
		logger.Fatal(fmt.Sprintf("Failed to start background tasks error=%v", err))
	}
	return func() {
		task.StopAll()
		manager.Shutdown()
		logger.Infof("Background tasks stopped poller_enabled=%t", cfg.Poller.Enabled)
	}
}

func registerService(cfg *config.Config) *registry.ServiceRegistry {
	if !cfg.ServiceRegistry.Enabled {
		return nil
	}
	host := cfg.ServiceRegistry.RegisterHost
	if host == "" {
		host = cfg.Server.Host
	}
	svcRegistry, err := registry.NewServiceRegistry(cfg.Etcd, cfg.ServiceRegistry, fmt.Sprintf("%s:%d", host, cfg.Server.Port))
	if err != nil {
		logger.Warnf("Service registry unavailable error=%v", err)
		return nil
	}
	if err := svcRegistry.Register(); err != nil {
		logger.Warnf("Service register failed error=%v", err)
		_ = svcRegistry.Deregister()
		return nil
	}
	return svcRegistry
}

func waitForSignal() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
}

// resolveConfigPath 根据环境选择配置文件，支持CONFIG_PATH覆盖、CONFIG_ENV区分环境
func resolveConfigPath() string {
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		return path
	}

	env := strings.ToLower(strings.TrimSpace(os.Getenv("CONFIG_ENV")))
	if env == "" {
		env = "dev"
	}

	switch env {
	case "prod", "production":
		return "configs/config_prod.yaml"
	case "dev", "development":
		return "configs/config.dev.yaml"
	default:
		return fmt.Sprintf("configs/config.%s.yaml", env)
	}
}
