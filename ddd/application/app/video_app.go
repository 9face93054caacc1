package app

import (
	"context"
	"sync"

	"videogen-service/ddd/application/cqe"
	"videogen-service/ddd/application/dto"
	"videogen-service/ddd/domain/entity"
	"videogen-service/ddd/domain/repo"
	"videogen-service/ddd/domain/service"
	"videogen-service/pkg/assert"
	"videogen-service/pkg/logger"
)

var (
	singleVideoApp VideoApp
	onceVideoApp   sync.Once
)

// VideoApp 单条视频的创建、派发与取消
type VideoApp interface {
	CreateVideo(ctx context.Context, req *cqe.CreateVideoReq) (*dto.VideoDto, error)
	// GenerateVideo 把草稿提交给生成服务，同步拒绝时视频进入 failed 并返回 ErrAdapter
	GenerateVideo(ctx context.Context, req *cqe.VideoActionReq) (*dto.VideoStatusDto, error)
	// CancelVideo 仅 generating 可取消，与回调竞争失败时返回 ErrInvalidTransition
	CancelVideo(ctx context.Context, req *cqe.VideoActionReq) (*dto.VideoStatusDto, error)
	GetVideo(ctx context.Context, req *cqe.VideoActionReq) (*dto.VideoDto, error)
}

type videoAppImpl struct {
	videos       repo.VideoRepository
	generation   service.GenerationService
	cancellation service.CancellationCoordinator
}

func DefaultVideoApp() VideoApp {
	assert.NotCircular()
	onceVideoApp.Do(func() {
		e := DefaultEngine()
		singleVideoApp = NewVideoAppWith(e.Videos, e.Generation, e.Cancellation)
	})
	assert.NotNil(singleVideoApp)
	return singleVideoApp
}

func NewVideoAppWith(videos repo.VideoRepository, generation service.GenerationService,
	cancellation service.CancellationCoordinator) VideoApp {
	return &videoAppImpl{
		videos:       videos,
		generation:   generation,
		cancellation: cancellation,
	}
}

func (a *videoAppImpl) CreateVideo(ctx context.Context, req *cqe.CreateVideoReq) (*dto.VideoDto, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	provider := req.ProviderType()
	video, err := entity.NewVideo(req.UserUUID, provider, req.Params(), "")
	if err != nil {
		return nil, err
	}
	if err := a.videos.CreateVideo(ctx, video); err != nil {
		return nil, err
	}
	logger.Info("Video created", map[string]interface{}{
		"video_uuid": video.VideoUUID(),
		"user_uuid":  req.UserUUID,
		"provider":   provider.String(),
	})
	return dto.NewVideoDto(video), nil
}

func (a *videoAppImpl) GenerateVideo(ctx context.Context, req *cqe.VideoActionReq) (*dto.VideoStatusDto, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	video, err := a.videos.GetVideo(ctx, req.UserUUID, req.VideoUUID)
	if err != nil {
		return nil, err
	}
	dispatched, err := a.generation.Dispatch(ctx, video)
	if err != nil {
		return nil, err
	}
	return dto.NewVideoStatusDto(dispatched), nil
}

func (a *videoAppImpl) CancelVideo(ctx context.Context, req *cqe.VideoActionReq) (*dto.VideoStatusDto, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	cancelled, err := a.cancellation.CancelVideo(ctx, req.UserUUID, req.VideoUUID)
	if err != nil {
		return nil, err
	}
	return dto.NewVideoStatusDto(cancelled), nil
}

func (a *videoAppImpl) GetVideo(ctx context.Context, req *cqe.VideoActionReq) (*dto.VideoDto, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	video, err := a.videos.GetVideo(ctx, req.UserUUID, req.VideoUUID)
	if err != nil {
		return nil, err
	}
	return dto.NewVideoDto(video), nil
}
