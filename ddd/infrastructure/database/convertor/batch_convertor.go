package convertor

import (
	"encoding/json"

	"videogen-service/ddd/domain/entity"
	"videogen-service/ddd/domain/vo"
	"videogen-service/ddd/infrastructure/database/po"
	"videogen-service/pkg/logger"
)

// BatchConvertor 批量任务转换器
type BatchConvertor struct{}

// NewBatchConvertor 创建批量任务转换器
func NewBatchConvertor() *BatchConvertor {
	return &BatchConvertor{}
}

// ToEntity 将PO转换为Entity，items 可以为空
func (c *BatchConvertor) ToEntity(p *po.BatchJob, items []*po.BatchItem) *entity.BatchJob {
	var cfg vo.ProviderConfig
	if p.Config != "" {
		if err := json.Unmarshal([]byte(p.Config), &cfg); err != nil {
			logger.Warnf("Decode batch config failed batch_uuid=%s error=%v", p.BatchUUID, err)
		}
	}
	return entity.RestoreBatchJob(entity.BatchJobAttrs{
		BatchUUID:      p.BatchUUID,
		UserUUID:       p.UserUUID,
		Provider:       vo.ProviderType(p.Provider),
		Status:         vo.BatchStatus(p.Status),
		TotalCount:     p.TotalCount,
		CompletedCount: p.CompletedCount,
		FailedCount:    p.FailedCount,
		Config:         cfg,
		Items:          c.ItemsToEntities(items),
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
		StartedAt:      p.StartedAt,
		CompletedAt:    p.CompletedAt,
	})
}

// ToPO 将Entity转换为PO，同时返回子项
func (c *BatchConvertor) ToPO(e *entity.BatchJob) (*po.BatchJob, []*po.BatchItem) {
	batch := &po.BatchJob{
		BaseModel: po.BaseModel{
			CreatedAt: e.CreatedAt(),
			UpdatedAt: e.UpdatedAt(),
		},
		BatchUUID:      e.BatchUUID(),
		UserUUID:       e.UserUUID(),
		Provider:       e.Provider().String(),
		Status:         e.Status().String(),
		TotalCount:     e.TotalCount(),
		CompletedCount: e.CompletedCount(),
		FailedCount:    e.FailedCount(),
		Config:         encodeJSON(e.Config()),
		StartedAt:      e.StartedAt(),
		CompletedAt:    e.CompletedAt(),
	}
	items := make([]*po.BatchItem, 0, len(e.Items()))
	for _, it := range e.Items() {
		items = append(items, c.ItemToPO(it))
	}
	return batch, items
}

// ItemToEntity 子项PO转Entity
func (c *BatchConvertor) ItemToEntity(p *po.BatchItem) *entity.BatchItem {
	return entity.RestoreBatchItem(entity.BatchItemAttrs{
		ItemUUID:     p.ItemUUID,
		BatchUUID:    p.BatchUUID,
		Index:        p.ItemIndex,
		Status:       vo.ItemStatus(p.Status),
		VideoUUID:    p.VideoUUID,
		Params:       decodeParams(p.Params),
		ErrorMessage: p.ErrorMessage,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	})
}

// ItemToPO 子项Entity转PO
func (c *BatchConvertor) ItemToPO(e *entity.BatchItem) *po.BatchItem {
	return &po.BatchItem{
		BaseModel: po.BaseModel{
			CreatedAt: e.CreatedAt(),
			UpdatedAt: e.UpdatedAt(),
		},
		ItemUUID:     e.ItemUUID(),
		BatchUUID:    e.BatchUUID(),
		ItemIndex:    e.Index(),
		Status:       e.Status().String(),
		VideoUUID:    e.VideoUUID(),
		Params:       encodeJSON(e.Params()),
		ErrorMessage: e.ErrorMessage(),
	}
}

// ItemsToEntities 批量转换子项
func (c *BatchConvertor) ItemsToEntities(pos []*po.BatchItem) []*entity.BatchItem {
	if pos == nil {
		return nil
	}
	items := make([]*entity.BatchItem, 0, len(pos))
	for _, p := range pos {
		items = append(items, c.ItemToEntity(p))
	}
	return items
}
