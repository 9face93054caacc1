package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"videogen-service/ddd/application/cqe"
	"videogen-service/ddd/application/dto"
	"videogen-service/ddd/domain/entity"
	"videogen-service/ddd/domain/vo"
	"videogen-service/pkg/assert"
	"videogen-service/pkg/config"
	"videogen-service/pkg/errno"
	"videogen-service/pkg/logger"
)

var (
	singleStatusApp StatusApp
	onceStatusApp   sync.Once
)

// StatusApp 状态查询，以及回调、结果消息和轮询三条异步结果的统一入口
type StatusApp interface {
	GetVideoStatus(ctx context.Context, req *cqe.VideoActionReq) (*dto.VideoStatusDto, error)
	GetPostStatus(ctx context.Context, req *cqe.PostActionReq) (*dto.PostStatusDto, error)
	GetBatchStatus(ctx context.Context, req *cqe.BatchActionReq) (*dto.BatchDto, error)

	// HandleGenerationCallback 过期回调（实体已终结）返回 Applied=false 而不是错误，避免外部服务重试
	HandleGenerationCallback(ctx context.Context, provider string, payload []byte) (*dto.CallbackAckDto, error)
	HandlePublishCallback(ctx context.Context, payload []byte) (*dto.CallbackAckDto, error)
	ApplyResult(ctx context.Context, msg *cqe.ProviderResultMsg) (*dto.CallbackAckDto, error)

	// PollGenerating 轮询 generating 视频，返回本轮结束的数量
	PollGenerating(ctx context.Context) (int, error)
	// PollPublishing 轮询 processing 发布记录，返回本轮结束的数量
	PollPublishing(ctx context.Context) (int, error)
}

// PollOptions 轮询参数，超时为0表示不做超时判定
type PollOptions struct {
	BatchSize         int
	GenerationTimeout time.Duration
	PublishTimeout    time.Duration
}

type statusAppImpl struct {
	engine *Engine
	opts   PollOptions
	now    func() time.Time
}

func DefaultStatusApp() StatusApp {
	assert.NotCircular()
	onceStatusApp.Do(func() {
		opts := PollOptions{}
		if cfg := config.GetGlobalConfig(); cfg != nil {
			opts = PollOptions{
				BatchSize:         cfg.Poller.BatchSize,
				GenerationTimeout: cfg.Poller.GenerationTimeout,
				PublishTimeout:    cfg.Poller.PublishTimeout,
			}
		}
		singleStatusApp = NewStatusAppWith(DefaultEngine(), opts)
	})
	assert.NotNil(singleStatusApp)
	return singleStatusApp
}

func NewStatusAppWith(engine *Engine, opts PollOptions) StatusApp {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 50
	}
	return &statusAppImpl{engine: engine, opts: opts, now: time.Now}
}

func (a *statusAppImpl) GetVideoStatus(ctx context.Context, req *cqe.VideoActionReq) (*dto.VideoStatusDto, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	video, err := a.engine.Videos.GetVideo(ctx, req.UserUUID, req.VideoUUID)
	if err != nil {
		return nil, err
	}
	return dto.NewVideoStatusDto(video), nil
}

func (a *statusAppImpl) GetPostStatus(ctx context.Context, req *cqe.PostActionReq) (*dto.PostStatusDto, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	post, err := a.engine.Posts.GetPost(ctx, req.UserUUID, req.PostUUID)
	if err != nil {
		return nil, err
	}
	return dto.NewPostStatusDto(post), nil
}

func (a *statusAppImpl) GetBatchStatus(ctx context.Context, req *cqe.BatchActionReq) (*dto.BatchDto, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	batch, err := a.engine.Batches.GetBatch(ctx, req.UserUUID, req.BatchUUID)
	if err != nil {
		return nil, err
	}
	return dto.NewBatchDto(batch), nil
}

func (a *statusAppImpl) HandleGenerationCallback(ctx context.Context, provider string, payload []byte) (*dto.CallbackAckDto, error) {
	p, err := vo.ParseProviderType(provider)
	if err != nil {
		return nil, errno.NewBizError(errno.ErrUnknownProvider, err)
	}
	gw, err := a.engine.Providers.Get(p)
	if err != nil {
		return nil, err
	}
	result, err := gw.NormalizeCallback(payload)
	if err != nil {
		return nil, errno.NewBizError(errno.ErrInvalidParam, err)
	}
	return a.applyGeneration(ctx, p, result)
}

func (a *statusAppImpl) HandlePublishCallback(ctx context.Context, payload []byte) (*dto.CallbackAckDto, error) {
	result, err := a.engine.Publisher.NormalizeCallback(payload)
	if err != nil {
		return nil, errno.NewBizError(errno.ErrInvalidParam, err)
	}
	return a.applyPublish(ctx, result)
}

func (a *statusAppImpl) ApplyResult(ctx context.Context, msg *cqe.ProviderResultMsg) (*dto.CallbackAckDto, error) {
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	result := msg.Result
	if msg.Kind == cqe.ResultKindPublish {
		return a.applyPublish(ctx, &result)
	}
	return a.applyGeneration(ctx, msg.ProviderType(), &result)
}

// applyGeneration 结果写入视频后，批量子项随之结束并触发补位
func (a *statusAppImpl) applyGeneration(ctx context.Context, provider vo.ProviderType, result *vo.JobResult) (*dto.CallbackAckDto, error) {
	video, err := a.engine.Generation.Resolve(ctx, provider, result)
	if errno.Decode(err) == errno.ErrInvalidTransition {
		return &dto.CallbackAckDto{Applied: false}, nil
	}
	if err != nil {
		return nil, err
	}
	if err := a.engine.Orchestrator.OnVideoResolved(ctx, video); err != nil {
		logger.Warnf("Batch item resolution failed video_uuid=%s item_uuid=%s error=%v", video.VideoUUID(), video.BatchItemUUID(), err)
	}
	return &dto.CallbackAckDto{Applied: true, Status: video.Status().String()}, nil
}

func (a *statusAppImpl) applyPublish(ctx context.Context, result *vo.JobResult) (*dto.CallbackAckDto, error) {
	post, err := a.engine.Publish.Resolve(ctx, result)
	if errno.Decode(err) == errno.ErrInvalidTransition {
		return &dto.CallbackAckDto{Applied: false}, nil
	}
	if err != nil {
		return nil, err
	}
	return &dto.CallbackAckDto{Applied: true, Status: post.Status().String()}, nil
}

func (a *statusAppImpl) PollGenerating(ctx context.Context) (int, error) {
	videos, err := a.engine.Videos.ListVideosByStatus(ctx, vo.VideoStatusGenerating, a.opts.BatchSize)
	if err != nil {
		return 0, err
	}
	resolved := 0
	for _, v := range videos {
		if ctx.Err() != nil {
			return resolved, ctx.Err()
		}
		result := a.pollVideo(ctx, v)
		if result == nil {
			continue
		}
		result.ReferenceID = v.VideoUUID()
		ack, err := a.applyGeneration(ctx, v.Provider(), result)
		if err != nil {
			logger.Warnf("Apply polled generation result failed video_uuid=%s error=%v", v.VideoUUID(), err)
			continue
		}
		if ack.Applied {
			resolved++
		}
	}
	return resolved, nil
}

// pollVideo 超时直接判定失败；尚未拿到任务ID或仍在处理时返回nil
func (a *statusAppImpl) pollVideo(ctx context.Context, v *entity.Video) *vo.JobResult {
	if a.expired(v.UpdatedAt(), a.opts.GenerationTimeout) {
		return vo.Failed(v.GenerationJobID(), fmt.Sprintf("generation timed out after %s", a.opts.GenerationTimeout))
	}
	if v.GenerationJobID() == "" {
		return nil
	}
	gw, err := a.engine.Providers.Get(v.Provider())
	if err != nil {
		logger.Warnf("Poll skipped, no adapter video_uuid=%s provider=%s", v.VideoUUID(), v.Provider())
		return nil
	}
	result, err := gw.Poll(ctx, v.GenerationJobID())
	if err != nil {
		logger.Warnf("Generation poll failed video_uuid=%s job_id=%s error=%v", v.VideoUUID(), v.GenerationJobID(), err)
		return nil
	}
	if result.Pending {
		return nil
	}
	return result
}

func (a *statusAppImpl) PollPublishing(ctx context.Context) (int, error) {
	posts, err := a.engine.Posts.ListPostsByStatus(ctx, vo.PostStatusProcessing, a.opts.BatchSize)
	if err != nil {
		return 0, err
	}
	resolved := 0
	for _, p := range posts {
		if ctx.Err() != nil {
			return resolved, ctx.Err()
		}
		result := a.pollPost(ctx, p)
		if result == nil {
			continue
		}
		result.ReferenceID = p.PostUUID()
		ack, err := a.applyPublish(ctx, result)
		if err != nil {
			logger.Warnf("Apply polled publish result failed post_uuid=%s error=%v", p.PostUUID(), err)
			continue
		}
		if ack.Applied {
			resolved++
		}
	}
	return resolved, nil
}

func (a *statusAppImpl) pollPost(ctx context.Context, p *entity.TikTokPost) *vo.JobResult {
	if a.expired(p.UpdatedAt(), a.opts.PublishTimeout) {
		return vo.Failed(p.PublishID(), fmt.Sprintf("publish timed out after %s", a.opts.PublishTimeout))
	}
	if p.PublishID() == "" {
		return nil
	}
	token, err := a.engine.Accounts.GetAccessToken(ctx, p.UserUUID(), p.AccountID())
	if err != nil {
		logger.Warnf("Publish poll skipped post_uuid=%s account_id=%s error=%v", p.PostUUID(), p.AccountID(), err)
		return nil
	}
	result, err := a.engine.Publisher.Poll(ctx, token, p.PublishID())
	if err != nil {
		logger.Warnf("Publish poll failed post_uuid=%s publish_id=%s error=%v", p.PostUUID(), p.PublishID(), err)
		return nil
	}
	if result.Pending {
		return nil
	}
	return result
}

func (a *statusAppImpl) expired(since time.Time, timeout time.Duration) bool {
	return timeout > 0 && !since.IsZero() && a.now().Sub(since) > timeout
}
