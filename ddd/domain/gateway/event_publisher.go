package gateway

import (
	"context"
	"time"
)

// LifecycleEvent 状态迁移事件
type LifecycleEvent struct {
	Entity     string    `json:"entity"`
	EntityUUID string    `json:"entity_uuid"`
	UserUUID   string    `json:"user_uuid"`
	Status     string    `json:"status"`
	Progress   int       `json:"progress"`
	Message    string    `json:"message,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// EventPublisher 事件发布，失败不影响主流程
type EventPublisher interface {
	Publish(ctx context.Context, evt LifecycleEvent) error
}
