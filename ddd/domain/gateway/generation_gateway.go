package gateway

import (
	"context"

	"videogen-service/ddd/domain/vo"
)

// GenerationRequest 提交给生成服务的请求
type GenerationRequest struct {
	// ReferenceID 我方视频UUID，回调时原样带回
	ReferenceID string
	Params      vo.GenerationParams
	CallbackURL string
}

// GenerationGateway 视频生成服务适配器。
// Submit 同步拒绝返回 errno.ErrAdapter；异步结果经 Poll 或 NormalizeCallback 归一化为 JobResult。
type GenerationGateway interface {
	Provider() vo.ProviderType
	Submit(ctx context.Context, req GenerationRequest) (vo.JobHandle, error)
	Poll(ctx context.Context, jobID string) (*vo.JobResult, error)
	NormalizeCallback(payload []byte) (*vo.JobResult, error)
}

// GenerationRegistry 按类型标签选择适配器
type GenerationRegistry interface {
	Get(provider vo.ProviderType) (GenerationGateway, error)
}
