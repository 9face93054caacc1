package repo

import (
	"context"

	"videogen-service/ddd/domain/entity"
	"videogen-service/ddd/domain/vo"
)

// VideoRepository 视频仓储接口。
// 所有按用户读取/写入的方法都带 userUUID 过滤；Find* 仅供回调与轮询等系统路径使用。
type VideoRepository interface {
	// CreateVideo 创建视频
	CreateVideo(ctx context.Context, video *entity.Video) error
	// GetVideo 按所有者读取，不存在返回 ErrVideoNotFound
	GetVideo(ctx context.Context, userUUID, videoUUID string) (*entity.Video, error)
	// FindVideo 不带所有者过滤
	FindVideo(ctx context.Context, videoUUID string) (*entity.Video, error)
	// FindVideoByJob 按外部任务ID查找
	FindVideoByJob(ctx context.Context, provider vo.ProviderType, jobID string) (*entity.Video, error)
	// TransitionVideo 条件更新：当前状态不在源集合内返回 ErrInvalidTransition，字段保持不变
	TransitionVideo(ctx context.Context, userUUID, videoUUID string, t entity.VideoTransition) (*entity.Video, error)
	// AttachGenerationJob 仅在 generating 状态下记录外部任务ID
	AttachGenerationJob(ctx context.Context, videoUUID, jobID string) error
	// ListVideosByStatus 按更新时间升序列出指定状态的视频
	ListVideosByStatus(ctx context.Context, status vo.VideoStatus, limit int) ([]*entity.Video, error)
}
