package app

import (
	"context"
	"sync"

	"videogen-service/ddd/application/cqe"
	"videogen-service/ddd/application/dto"
	"videogen-service/ddd/domain/service"
	"videogen-service/pkg/assert"
)

var (
	singlePostApp PostApp
	oncePostApp   sync.Once
)

// PostApp 视频发布
type PostApp interface {
	// PublishVideo 创建发布记录并提交给平台，只接受 ready 状态的视频
	PublishVideo(ctx context.Context, req *cqe.PublishVideoReq) (*dto.PostStatusDto, error)
}

type postAppImpl struct {
	publish service.PublishService
}

func DefaultPostApp() PostApp {
	assert.NotCircular()
	oncePostApp.Do(func() {
		singlePostApp = NewPostAppWith(DefaultEngine().Publish)
	})
	assert.NotNil(singlePostApp)
	return singlePostApp
}

func NewPostAppWith(publish service.PublishService) PostApp {
	return &postAppImpl{publish: publish}
}

func (a *postAppImpl) PublishVideo(ctx context.Context, req *cqe.PublishVideoReq) (*dto.PostStatusDto, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	post, err := a.publish.Publish(ctx, req.UserUUID, req.VideoUUID, req.AccountID, req.Caption)
	if err != nil {
		return nil, err
	}
	return dto.NewPostStatusDto(post), nil
}
