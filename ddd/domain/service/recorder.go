package service

import (
	"context"
	"errors"
	"time"

	"videogen-service/ddd/domain/entity"
	"videogen-service/ddd/domain/gateway"
	"videogen-service/pkg/errno"
	"videogen-service/pkg/logger"
	"videogen-service/pkg/metrics"
)

// recorder 记录状态迁移的指标与事件，事件发布失败只打日志
type recorder struct {
	events gateway.EventPublisher
}

func (r recorder) video(ctx context.Context, v *entity.Video) {
	r.publish(ctx, gateway.LifecycleEvent{
		Entity:     "video",
		EntityUUID: v.VideoUUID(),
		UserUUID:   v.UserUUID(),
		Status:     v.Status().String(),
		Progress:   v.Progress(),
		Message:    v.DisplayMessage(),
		OccurredAt: time.Now(),
	})
}

func (r recorder) post(ctx context.Context, p *entity.TikTokPost) {
	r.publish(ctx, gateway.LifecycleEvent{
		Entity:     "post",
		EntityUUID: p.PostUUID(),
		UserUUID:   p.UserUUID(),
		Status:     p.Status().String(),
		Progress:   p.Progress(),
		Message:    p.ErrorMessage(),
		OccurredAt: time.Now(),
	})
}

func (r recorder) batch(ctx context.Context, b *entity.BatchJob) {
	r.publish(ctx, gateway.LifecycleEvent{
		Entity:     "batch",
		EntityUUID: b.BatchUUID(),
		UserUUID:   b.UserUUID(),
		Status:     b.Status().String(),
		Progress:   b.Progress(),
		OccurredAt: time.Now(),
	})
}

func (r recorder) publish(ctx context.Context, evt gateway.LifecycleEvent) {
	metrics.ObserveTransition(evt.Entity, evt.Status, nil)
	if r.events == nil {
		return
	}
	if err := r.events.Publish(ctx, evt); err != nil {
		logger.Warnf("Lifecycle event publish failed entity=%s uuid=%s status=%s error=%v",
			evt.Entity, evt.EntityUUID, evt.Status, err)
	}
}

func (r recorder) rejected(entityName, to string, err error) {
	if isInvalidTransition(err) {
		metrics.ObserveTransition(entityName, to, err)
	}
}

func isInvalidTransition(err error) bool {
	return errors.Is(err, errno.ErrInvalidTransition)
}

// adapterError 把外部调用错误归类为 ErrAdapter / ErrAdapterTimeout
func adapterError(err error) error {
	switch {
	case errors.Is(err, errno.ErrAdapter), errors.Is(err, errno.ErrAdapterTimeout):
		return err
	case errors.Is(err, context.DeadlineExceeded):
		return errno.NewBizError(errno.ErrAdapterTimeout, err)
	default:
		return errno.NewBizError(errno.ErrAdapter, err)
	}
}

// failureReason 写入实体的失败原因
func failureReason(err error) string {
	if errors.Is(err, errno.ErrAdapterTimeout) || errors.Is(err, context.DeadlineExceeded) {
		return "provider request timed out"
	}
	return err.Error()
}
