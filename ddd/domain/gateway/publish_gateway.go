package gateway

import (
	"context"

	"videogen-service/ddd/domain/vo"
)

// PublishRequest 提交给发布平台的请求
type PublishRequest struct {
	ReferenceID  string
	AccessToken  string
	VideoURL     string
	Caption      string
	PrivacyLevel string
}

// PublishGateway 发布平台适配器
type PublishGateway interface {
	Submit(ctx context.Context, req PublishRequest) (vo.JobHandle, error)
	Poll(ctx context.Context, accessToken, publishID string) (*vo.JobResult, error)
	NormalizeCallback(payload []byte) (*vo.JobResult, error)
}
