package event

import (
	"context"
	"time"

	"videogen-service/ddd/domain/gateway"
	"videogen-service/pkg/kafka"
)

// KafkaPublisher 把状态迁移事件写入 lifecycle topic，key 为实体UUID以保证同一实体有序
type KafkaPublisher struct {
	client *kafka.Client
	topic  string
}

var _ gateway.EventPublisher = (*KafkaPublisher)(nil)

func NewKafkaPublisher(client *kafka.Client, topic string) *KafkaPublisher {
	return &KafkaPublisher{client: client, topic: topic}
}

// publishTimeout 事件发送不拖慢状态迁移的调用方
const publishTimeout = 2 * time.Second

func (p *KafkaPublisher) Publish(ctx context.Context, evt gateway.LifecycleEvent) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	return p.client.ProduceJSON(ctx, p.topic, evt.EntityUUID, evt)
}

// NopPublisher 未启用Kafka时丢弃事件
type NopPublisher struct{}

var _ gateway.EventPublisher = NopPublisher{}

func (NopPublisher) Publish(context.Context, gateway.LifecycleEvent) error { return nil }
