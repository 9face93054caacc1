package dto

import (
	"time"

	"videogen-service/ddd/domain/entity"
	"videogen-service/ddd/domain/vo"
)

// BatchItemDto 子项状态
type BatchItemDto struct {
	ItemUUID     string `json:"item_uuid"`
	Index        int    `json:"index"`
	Status       string `json:"status"`
	VideoUUID    string `json:"video_uuid,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// BatchDto 批量任务状态，Items 按序号排列
type BatchDto struct {
	BatchUUID             string            `json:"batch_uuid"`
	Provider              string            `json:"provider"`
	Status                string            `json:"status"`
	TotalCount            int               `json:"total_count"`
	CompletedCount        int               `json:"completed_count"`
	FailedCount           int               `json:"failed_count"`
	Progress              int               `json:"progress"`
	Config                vo.ProviderConfig `json:"config"`
	Items                 []*BatchItemDto   `json:"items,omitempty"`
	Dispatched            int               `json:"dispatched,omitempty"`
	ShouldContinuePolling bool              `json:"should_continue_polling"`
	CreatedAt             time.Time         `json:"created_at"`
	StartedAt             *time.Time        `json:"started_at,omitempty"`
	CompletedAt           *time.Time        `json:"completed_at,omitempty"`
}

func NewBatchDto(b *entity.BatchJob) *BatchDto {
	if b == nil {
		return nil
	}
	d := &BatchDto{
		BatchUUID:             b.BatchUUID(),
		Provider:              b.Provider().String(),
		Status:                b.Status().String(),
		TotalCount:            b.TotalCount(),
		CompletedCount:        b.CompletedCount(),
		FailedCount:           b.FailedCount(),
		Progress:              b.Progress(),
		Config:                b.Config(),
		ShouldContinuePolling: b.ShouldContinuePolling(),
		CreatedAt:             b.CreatedAt(),
		StartedAt:             b.StartedAt(),
		CompletedAt:           b.CompletedAt(),
	}
	for _, item := range b.Items() {
		d.Items = append(d.Items, &BatchItemDto{
			ItemUUID:     item.ItemUUID(),
			Index:        item.Index(),
			Status:       item.Status().String(),
			VideoUUID:    item.VideoUUID(),
			ErrorMessage: item.ErrorMessage(),
		})
	}
	return d
}

// BatchListDto 分页列表，列表项不带子项明细
type BatchListDto struct {
	Batches  []*BatchDto `json:"batches"`
	Total    int64       `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
}

func NewBatchListDto(batches []*entity.BatchJob, total int64, page, pageSize int) *BatchListDto {
	out := &BatchListDto{Batches: make([]*BatchDto, 0, len(batches)), Total: total, Page: page, PageSize: pageSize}
	for _, b := range batches {
		d := NewBatchDto(b)
		d.Items = nil
		out.Batches = append(out.Batches, d)
	}
	return out
}

// CallbackAckDto 回调处理结果，Applied=false 表示结果已过期（实体已处于终态）
type CallbackAckDto struct {
	Applied bool   `json:"applied"`
	Status  string `json:"status,omitempty"`
}
