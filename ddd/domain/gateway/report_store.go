package gateway

import (
	"context"

	"videogen-service/ddd/domain/entity"
)

// BatchReportStore 批量任务结束后归档结果报表
type BatchReportStore interface {
	Archive(ctx context.Context, batch *entity.BatchJob) (objectKey string, err error)
}
