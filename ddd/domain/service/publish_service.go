package service

import (
	"context"
	"time"

	"videogen-service/ddd/domain/entity"
	"videogen-service/ddd/domain/gateway"
	"videogen-service/ddd/domain/repo"
	"videogen-service/ddd/domain/vo"
	"videogen-service/pkg/errno"
	"videogen-service/pkg/logger"
)

// PublishService 发布领域服务
type PublishService interface {
	// Publish 为 ready 视频创建发布记录并提交给平台
	Publish(ctx context.Context, userUUID, videoUUID, accountID, caption string) (*entity.TikTokPost, error)
	// Resolve 应用平台返回的发布结果
	Resolve(ctx context.Context, result *vo.JobResult) (*entity.TikTokPost, error)
}

type publishServiceImpl struct {
	posts        repo.PostRepository
	videos       repo.VideoRepository
	accounts     repo.AccountRepository
	publisher    gateway.PublishGateway
	timeout      time.Duration
	privacyLevel string
	recorder     recorder
}

// NewPublishService 创建发布领域服务
func NewPublishService(posts repo.PostRepository, videos repo.VideoRepository, accounts repo.AccountRepository,
	publisher gateway.PublishGateway, events gateway.EventPublisher, timeout time.Duration, privacyLevel string) PublishService {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &publishServiceImpl{
		posts:        posts,
		videos:       videos,
		accounts:     accounts,
		publisher:    publisher,
		timeout:      timeout,
		privacyLevel: privacyLevel,
		recorder:     recorder{events: events},
	}
}

func (s *publishServiceImpl) Publish(ctx context.Context, userUUID, videoUUID, accountID, caption string) (*entity.TikTokPost, error) {
	video, err := s.videos.GetVideo(ctx, userUUID, videoUUID)
	if err != nil {
		return nil, err
	}
	if video.Status() != vo.VideoStatusReady {
		return nil, errno.Errorf(errno.ErrInvalidState, "cannot publish a video that is %s", video.Status())
	}
	post, err := entity.NewTikTokPost(userUUID, videoUUID, accountID, caption)
	if err != nil {
		return nil, err
	}
	token, err := s.accounts.GetAccessToken(ctx, userUUID, accountID)
	if err != nil {
		return nil, err
	}

	if err := s.posts.CreatePost(ctx, post); err != nil {
		return nil, err
	}
	posting, err := s.videos.TransitionVideo(ctx, userUUID, videoUUID, entity.StartPublishing())
	if err != nil {
		// 并发发布同一视频时只有一个能进入 posting
		s.recorder.rejected("video", vo.VideoStatusPosting.String(), err)
		if _, rerr := s.posts.TransitionPost(ctx, userUUID, post.PostUUID(), entity.RejectPost(err.Error())); rerr != nil {
			logger.Warnf("Reject post failed post_uuid=%s error=%v", post.PostUUID(), rerr)
		}
		return nil, err
	}
	s.recorder.video(ctx, posting)

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	handle, err := s.publisher.Submit(callCtx, gateway.PublishRequest{
		ReferenceID:  post.PostUUID(),
		AccessToken:  token,
		VideoURL:     video.RemoteURL(),
		Caption:      caption,
		PrivacyLevel: s.privacyLevel,
	})
	if err != nil {
		bizErr := adapterError(err)
		reason := failureReason(bizErr)
		logger.Warnf("Publish submit failed post_uuid=%s video_uuid=%s error=%v", post.PostUUID(), videoUUID, err)
		if p, rerr := s.posts.TransitionPost(ctx, userUUID, post.PostUUID(), entity.RejectPost(reason)); rerr == nil {
			s.recorder.post(ctx, p)
		}
		if v, verr := s.videos.TransitionVideo(ctx, userUUID, videoUUID, entity.FailPublishing(reason)); verr == nil {
			s.recorder.video(ctx, v)
		}
		return nil, bizErr
	}

	// 只带 publish_id 的回调可能早于这里落库：回调得到 ErrPostNotFound（404）由发送方重试，
	// 发布轮询也会在 publish_id 写入后补上结果
	accepted, err := s.posts.TransitionPost(ctx, userUUID, post.PostUUID(), entity.AcceptPost(handle.JobID))
	if err != nil {
		return nil, err
	}
	s.recorder.post(ctx, accepted)
	logger.Infof("Publish dispatched post_uuid=%s video_uuid=%s publish_id=%s", post.PostUUID(), videoUUID, handle.JobID)
	return accepted, nil
}

func (s *publishServiceImpl) Resolve(ctx context.Context, result *vo.JobResult) (*entity.TikTokPost, error) {
	if result == nil || (result.ReferenceID == "" && result.JobID == "") {
		return nil, errno.Errorf(errno.ErrInvalidParam, "result has neither reference nor publish id")
	}
	if result.Pending {
		return nil, errno.Errorf(errno.ErrInvalidParam, "publish %s is still running", result.JobID)
	}

	var post *entity.TikTokPost
	var err error
	if result.ReferenceID != "" {
		post, err = s.posts.FindPost(ctx, result.ReferenceID)
	} else {
		post, err = s.posts.FindPostByPublishID(ctx, result.JobID)
	}
	if err != nil {
		return nil, err
	}

	postT := entity.FailPost(result.Reason)
	videoT := entity.FailPublishing(result.Reason)
	if result.Reason == "" {
		postT = entity.FailPost("publish failed")
		videoT = entity.FailPublishing("publish failed")
	}
	if result.Success {
		postT = entity.CompletePost(result.PublicID, time.Now())
		videoT = entity.CompletePublishing()
	}

	updated, err := s.posts.TransitionPost(ctx, post.UserUUID(), post.PostUUID(), postT)
	if err != nil {
		s.recorder.rejected("post", postT.To.String(), err)
		return nil, err
	}
	s.recorder.post(ctx, updated)

	if v, err := s.videos.TransitionVideo(ctx, post.UserUUID(), post.VideoUUID(), videoT); err != nil {
		logger.Warnf("Video publish transition rejected video_uuid=%s to=%s error=%v", post.VideoUUID(), videoT.To, err)
	} else {
		s.recorder.video(ctx, v)
	}
	logger.Infof("Publish resolved post_uuid=%s status=%s public_id=%s", updated.PostUUID(), updated.Status(), updated.PublicID())
	return updated, nil
}
