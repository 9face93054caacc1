package repo

import (
	"context"

	"videogen-service/ddd/domain/entity"
)

// BatchRepository 批量任务仓储接口
type BatchRepository interface {
	// CreateBatch 批量任务与子项在同一事务内写入
	CreateBatch(ctx context.Context, batch *entity.BatchJob) error
	// GetBatch 按所有者读取，包含按 index 排序的子项
	GetBatch(ctx context.Context, userUUID, batchUUID string) (*entity.BatchJob, error)
	// ListBatches 列出用户的批量任务（不含子项），按创建时间倒序
	ListBatches(ctx context.Context, userUUID string, offset, limit int) ([]*entity.BatchJob, int64, error)
	// TransitionBatch 条件更新批量任务状态
	TransitionBatch(ctx context.Context, userUUID, batchUUID string, t entity.BatchTransition) error
	// GetItem 读取子项
	GetItem(ctx context.Context, itemUUID string) (*entity.BatchItem, error)
	// StartItem 子项 pending -> processing
	StartItem(ctx context.Context, itemUUID string) error
	// LinkItemVideo 关联子项生成的视频
	LinkItemVideo(ctx context.Context, itemUUID, videoUUID string) error
	// ResolveItem 子项进入终态并在同一事务内递增批量计数，返回最新的批量任务（不含子项）
	ResolveItem(ctx context.Context, itemUUID string, t entity.ItemTransition) (*entity.BatchJob, error)
}
