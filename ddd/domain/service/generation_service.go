package service

import (
	"context"
	"strings"
	"time"

	"videogen-service/ddd/domain/entity"
	"videogen-service/ddd/domain/gateway"
	"videogen-service/ddd/domain/repo"
	"videogen-service/ddd/domain/vo"
	"videogen-service/pkg/errno"
	"videogen-service/pkg/logger"
)

// GenerationService 视频生成领域服务：派发生成任务并应用归一化结果
type GenerationService interface {
	// Dispatch draft -> generating 后提交给适配器；同步拒绝或超时会把视频置为 failed 并返回 ErrAdapter
	Dispatch(ctx context.Context, video *entity.Video) (*entity.Video, error)
	// Resolve 应用外部结果，与取消竞争失败时返回 ErrInvalidTransition
	Resolve(ctx context.Context, provider vo.ProviderType, result *vo.JobResult) (*entity.Video, error)
	// Supports 没有对应适配器时返回 ErrUnknownProvider
	Supports(provider vo.ProviderType) error
}

type generationServiceImpl struct {
	videos      repo.VideoRepository
	providers   gateway.GenerationRegistry
	timeout     time.Duration
	callbackURL string
	recorder    recorder
}

// NewGenerationService 创建生成领域服务
func NewGenerationService(videos repo.VideoRepository, providers gateway.GenerationRegistry,
	events gateway.EventPublisher, timeout time.Duration, callbackURL string) GenerationService {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &generationServiceImpl{
		videos:      videos,
		providers:   providers,
		timeout:     timeout,
		callbackURL: callbackURL,
		recorder:    recorder{events: events},
	}
}

func (s *generationServiceImpl) Supports(provider vo.ProviderType) error {
	_, err := s.gateway(provider)
	return err
}

func (s *generationServiceImpl) gateway(provider vo.ProviderType) (gateway.GenerationGateway, error) {
	gw, err := s.providers.Get(provider)
	if err != nil {
		return nil, errno.NewBizError(errno.ErrUnknownProvider, err)
	}
	return gw, nil
}

func (s *generationServiceImpl) Dispatch(ctx context.Context, video *entity.Video) (*entity.Video, error) {
	gw, err := s.gateway(video.Provider())
	if err != nil {
		return nil, err
	}

	current, err := s.videos.TransitionVideo(ctx, video.UserUUID(), video.VideoUUID(), entity.StartGeneration())
	if err != nil {
		s.recorder.rejected("video", vo.VideoStatusGenerating.String(), err)
		return nil, err
	}
	s.recorder.video(ctx, current)

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	handle, err := gw.Submit(callCtx, gateway.GenerationRequest{
		ReferenceID: current.VideoUUID(),
		Params:      current.Params(),
		CallbackURL: s.callbackFor(video.Provider()),
	})
	if err != nil {
		bizErr := adapterError(err)
		reason := failureReason(bizErr)
		logger.Warnf("Generation submit failed video_uuid=%s provider=%s error=%v", current.VideoUUID(), video.Provider(), err)
		if failed, ferr := s.videos.TransitionVideo(ctx, current.UserUUID(), current.VideoUUID(), entity.FailGeneration(reason)); ferr == nil {
			s.recorder.video(ctx, failed)
		} else if !isInvalidTransition(ferr) {
			logger.Errorf("Mark video failed error video_uuid=%s error=%v", current.VideoUUID(), ferr)
		}
		return nil, bizErr
	}

	if err := s.videos.AttachGenerationJob(ctx, current.VideoUUID(), handle.JobID); err != nil {
		// 视频可能已被取消，任务ID不再需要
		logger.Warnf("Attach generation job skipped video_uuid=%s job_id=%s error=%v", current.VideoUUID(), handle.JobID, err)
	} else {
		current.SetGenerationJobID(handle.JobID)
	}
	logger.Infof("Generation dispatched video_uuid=%s provider=%s job_id=%s", current.VideoUUID(), video.Provider(), handle.JobID)
	return current, nil
}

func (s *generationServiceImpl) Resolve(ctx context.Context, provider vo.ProviderType, result *vo.JobResult) (*entity.Video, error) {
	if result == nil || (result.ReferenceID == "" && result.JobID == "") {
		return nil, errno.Errorf(errno.ErrInvalidParam, "result has neither reference nor job id")
	}
	if result.Pending {
		return nil, errno.Errorf(errno.ErrInvalidParam, "job %s is still running", result.JobID)
	}

	video, err := s.locate(ctx, provider, result)
	if err != nil {
		return nil, err
	}

	t := entity.FailGeneration(result.Reason)
	switch {
	case result.Success && result.ResultURL != "":
		t = entity.CompleteGeneration(result.ResultURL)
	case result.Success:
		t = entity.FailGeneration("provider returned no video url")
	case result.Reason == "":
		t = entity.FailGeneration("provider reported failure")
	}

	updated, err := s.videos.TransitionVideo(ctx, video.UserUUID(), video.VideoUUID(), t)
	if err != nil {
		s.recorder.rejected("video", t.To.String(), err)
		logger.Infof("Generation result ignored video_uuid=%s status=%s to=%s error=%v", video.VideoUUID(), video.Status(), t.To, err)
		return nil, err
	}
	s.recorder.video(ctx, updated)
	logger.Infof("Generation resolved video_uuid=%s status=%s", updated.VideoUUID(), updated.Status())
	return updated, nil
}

// callbackFor 回调地址为 <callback_url>/generation/<provider>，未配置时只能依赖轮询
func (s *generationServiceImpl) callbackFor(provider vo.ProviderType) string {
	if s.callbackURL == "" {
		return ""
	}
	return strings.TrimRight(s.callbackURL, "/") + "/generation/" + provider.String()
}

func (s *generationServiceImpl) locate(ctx context.Context, provider vo.ProviderType, result *vo.JobResult) (*entity.Video, error) {
	if result.ReferenceID != "" {
		return s.videos.FindVideo(ctx, result.ReferenceID)
	}
	return s.videos.FindVideoByJob(ctx, provider, result.JobID)
}
