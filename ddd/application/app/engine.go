package app

import (
	"sync"

	"gorm.io/gorm"

	"videogen-service/ddd/domain/gateway"
	"videogen-service/ddd/domain/repo"
	"videogen-service/ddd/domain/service"
	"videogen-service/ddd/domain/vo"
	"videogen-service/ddd/infrastructure/database/persistence"
	"videogen-service/ddd/infrastructure/event"
	"videogen-service/ddd/infrastructure/lock"
	"videogen-service/ddd/infrastructure/provider"
	"videogen-service/ddd/infrastructure/storage"
	"videogen-service/internal/resource"
	"videogen-service/pkg/assert"
	"videogen-service/pkg/config"
	"videogen-service/pkg/kafka"
	"videogen-service/pkg/logger"
)

// Engine 应用层共享的仓储、适配器和领域服务，各应用服务从这里取依赖
type Engine struct {
	Videos       repo.VideoRepository
	Batches      repo.BatchRepository
	Posts        repo.PostRepository
	Accounts     repo.AccountRepository
	Providers    gateway.GenerationRegistry
	Publisher    gateway.PublishGateway
	Generation   service.GenerationService
	Orchestrator service.BatchOrchestrator
	Cancellation service.CancellationCoordinator
	Publish      service.PublishService
}

var (
	singleEngine *Engine
	onceEngine   sync.Once
)

// DefaultEngine 按全局配置和已打开的资源组装，必须在 MustInitResources 之后调用
func DefaultEngine() *Engine {
	assert.NotCircular()
	onceEngine.Do(func() {
		cfg := config.GetGlobalConfig()
		if cfg == nil {
			panic("global config not initialized before application engine")
		}
		singleEngine = NewEngine(cfg, resource.DefaultMysqlResource().MainDB(), EngineAdapters{
			Locker:  dispatchLocker(cfg),
			Events:  lifecyclePublisher(cfg),
			Reports: reportStore(cfg),
		})
	})
	assert.NotNil(singleEngine)
	return singleEngine
}

// EngineAdapters 可选的外部依赖，为空时退化为进程内实现或直接跳过
type EngineAdapters struct {
	Locker    gateway.DispatchLocker
	Events    gateway.EventPublisher
	Reports   gateway.BatchReportStore
	Providers gateway.GenerationRegistry
	Publisher gateway.PublishGateway
}

// NewEngine 组装应用依赖
func NewEngine(cfg *config.Config, db *gorm.DB, adapters EngineAdapters) *Engine {
	videos := persistence.NewVideoRepository(db)
	batches := persistence.NewBatchRepository(db)
	posts := persistence.NewPostRepository(db)
	accounts := persistence.NewAccountRepository(db)

	events := adapters.Events
	if events == nil {
		events = event.NopPublisher{}
	}
	providers := adapters.Providers
	if providers == nil {
		providers = provider.NewRegistryFromConfig(cfg.Provider)
	}
	publisher := adapters.Publisher
	if publisher == nil {
		publisher = provider.NewTikTokClient(cfg.Provider.TikTok.BaseURL, cfg.Provider.Timeout)
	}

	generation := service.NewGenerationService(videos, providers, events, cfg.Provider.Timeout, cfg.Provider.CallbackURL)
	providerCfg := cfg.Provider
	orchestrator := service.NewBatchOrchestrator(batches, videos, generation, adapters.Locker, adapters.Reports, events,
		service.OrchestratorOptions{
			Concurrency:      func(p vo.ProviderType) int { return providerCfg.ConcurrencyFor(p.String()) },
			StrictCompletion: cfg.Batch.StrictCompletion,
			MaxItems:         cfg.Batch.MaxItems,
		})

	return &Engine{
		Videos:       videos,
		Batches:      batches,
		Posts:        posts,
		Accounts:     accounts,
		Providers:    providers,
		Publisher:    publisher,
		Generation:   generation,
		Orchestrator: orchestrator,
		Cancellation: service.NewCancellationCoordinator(videos, orchestrator, events),
		Publish: service.NewPublishService(posts, videos, accounts, publisher, events,
			cfg.Provider.Timeout, cfg.Provider.TikTok.PrivacyLevel),
	}
}

func dispatchLocker(cfg *config.Config) gateway.DispatchLocker {
	client := resource.DefaultRedisResource().Client()
	if !cfg.Redis.Enabled || client == nil {
		return nil
	}
	return lock.NewRedisLocker(client, cfg.Batch.LockTTL)
}

func lifecyclePublisher(cfg *config.Config) gateway.EventPublisher {
	if !cfg.Kafka.Enabled || cfg.Kafka.Topics.LifecycleEvents == "" {
		return event.NopPublisher{}
	}
	return event.NewKafkaPublisher(kafka.DefaultClient(), cfg.Kafka.Topics.LifecycleEvents)
}

func reportStore(cfg *config.Config) gateway.BatchReportStore {
	client := resource.DefaultMinioResource().GetClient()
	if !cfg.Minio.Enabled || client == nil {
		logger.Warnf("MinIO disabled, batch reports are not archived")
		return nil
	}
	return storage.NewMinioReportStore(client, resource.DefaultMinioResource().GetBucketName(), cfg.Minio.ReportPrefix)
}
