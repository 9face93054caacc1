package resource

import (
	"videogen-service/pkg/config"
	"videogen-service/pkg/kafka"
	"videogen-service/pkg/logger"
	"videogen-service/pkg/manager"
)

// KafkaResource 结果消费与生命周期事件共用的Kafka客户端
type KafkaResource struct {
	opened bool
}

type KafkaResourcePlugin struct{}

func (p *KafkaResourcePlugin) Name() string { return "kafka" }

func (p *KafkaResourcePlugin) MustCreateResource() manager.Resource { return &KafkaResource{} }

func (r *KafkaResource) MustOpen() {
	cfg := config.GetGlobalConfig()
	if cfg == nil {
		panic("global config not initialized before KafkaResource")
	}
	if !cfg.Kafka.Enabled {
		logger.Warnf("Kafka disabled, lifecycle events are dropped and provider.results is not consumed")
		return
	}
	kafka.DefaultClient().MustOpen()
	r.opened = true
}

func (r *KafkaResource) Close() {
	if r.opened {
		kafka.DefaultClient().Close()
	}
}
