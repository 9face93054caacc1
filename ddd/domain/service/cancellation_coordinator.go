package service

import (
	"context"

	"videogen-service/ddd/domain/entity"
	"videogen-service/ddd/domain/gateway"
	"videogen-service/ddd/domain/repo"
	"videogen-service/ddd/domain/vo"
	"videogen-service/pkg/errno"
	"videogen-service/pkg/logger"
)

// CancellationCoordinator 处理用户取消，与外部回调竞争同一条状态记录
type CancellationCoordinator interface {
	// CancelVideo 仅 generating 可取消；先到的回调胜出时返回 ErrInvalidTransition
	CancelVideo(ctx context.Context, userUUID, videoUUID string) (*entity.Video, error)
	CancelBatch(ctx context.Context, userUUID, batchUUID string) (*entity.BatchJob, error)
}

type cancellationCoordinatorImpl struct {
	videos       repo.VideoRepository
	orchestrator BatchOrchestrator
	recorder     recorder
}

// NewCancellationCoordinator 创建取消协调服务
func NewCancellationCoordinator(videos repo.VideoRepository, orchestrator BatchOrchestrator, events gateway.EventPublisher) CancellationCoordinator {
	return &cancellationCoordinatorImpl{
		videos:       videos,
		orchestrator: orchestrator,
		recorder:     recorder{events: events},
	}
}

func (c *cancellationCoordinatorImpl) CancelVideo(ctx context.Context, userUUID, videoUUID string) (*entity.Video, error) {
	video, err := c.videos.GetVideo(ctx, userUUID, videoUUID)
	if err != nil {
		return nil, err
	}
	if video.Status() != vo.VideoStatusGenerating {
		return nil, errno.Errorf(errno.ErrInvalidState, "cannot cancel a video that is %s", video.Status())
	}

	cancelled, err := c.videos.TransitionVideo(ctx, userUUID, videoUUID, entity.CancelGeneration())
	if err != nil {
		c.recorder.rejected("video", vo.VideoStatusCancelled.String(), err)
		return nil, err
	}
	c.recorder.video(ctx, cancelled)
	logger.Infof("Video cancelled video_uuid=%s user_uuid=%s", videoUUID, userUUID)

	if err := c.orchestrator.OnVideoResolved(ctx, cancelled); err != nil {
		logger.Warnf("Resolve batch item after cancel failed video_uuid=%s error=%v", videoUUID, err)
	}
	return cancelled, nil
}

func (c *cancellationCoordinatorImpl) CancelBatch(ctx context.Context, userUUID, batchUUID string) (*entity.BatchJob, error) {
	return c.orchestrator.CancelBatch(ctx, userUUID, batchUUID)
}
