package dao

import (
	"context"
	"time"

	"gorm.io/gorm"

	"videogen-service/ddd/infrastructure/database/po"
)

type BatchDAO struct {
	db *gorm.DB
}

func NewBatchDAO(db *gorm.DB) *BatchDAO {
	return &BatchDAO{db: db}
}

// CreateWithItems 批量任务和子项同一事务写入
func (d *BatchDAO) CreateWithItems(ctx context.Context, batch *po.BatchJob, items []*po.BatchItem) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(batch).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		return tx.CreateInBatches(items, 100).Error
	})
}

func (d *BatchDAO) FindOwned(ctx context.Context, userUUID, batchUUID string) (*po.BatchJob, error) {
	var batch po.BatchJob
	if err := d.db.WithContext(ctx).Where("batch_uuid = ? AND user_uuid = ?", batchUUID, userUUID).First(&batch).Error; err != nil {
		return nil, err
	}
	return &batch, nil
}

func (d *BatchDAO) ListByUser(ctx context.Context, userUUID string, offset, limit int) ([]*po.BatchJob, int64, error) {
	var (
		batches []*po.BatchJob
		total   int64
	)
	q := d.db.WithContext(ctx).Model(&po.BatchJob{}).Where("user_uuid = ?", userUUID).Session(&gorm.Session{})
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := q.Order("created_at DESC").Order("id DESC").Offset(offset).Limit(limit).Find(&batches).Error; err != nil {
		return nil, 0, err
	}
	return batches, total, nil
}

// ConditionalUpdate 仅当状态在 from 中时更新
func (d *BatchDAO) ConditionalUpdate(ctx context.Context, userUUID, batchUUID string, from []string, updates map[string]interface{}) (int64, error) {
	res := d.db.WithContext(ctx).Model(&po.BatchJob{}).
		Where("batch_uuid = ? AND user_uuid = ? AND status IN ?", batchUUID, userUUID, from).
		Updates(updates)
	return res.RowsAffected, res.Error
}

func (d *BatchDAO) ItemsByBatch(ctx context.Context, batchUUID string) ([]*po.BatchItem, error) {
	var items []*po.BatchItem
	if err := d.db.WithContext(ctx).Where("batch_uuid = ?", batchUUID).Order("item_index ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (d *BatchDAO) FindItem(ctx context.Context, itemUUID string) (*po.BatchItem, error) {
	var item po.BatchItem
	if err := d.db.WithContext(ctx).Where("item_uuid = ?", itemUUID).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// UpdateItemStatus 条件更新子项状态
func (d *BatchDAO) UpdateItemStatus(ctx context.Context, itemUUID string, from []string, updates map[string]interface{}) (int64, error) {
	res := d.db.WithContext(ctx).Model(&po.BatchItem{}).
		Where("item_uuid = ? AND status IN ?", itemUUID, from).
		Updates(updates)
	return res.RowsAffected, res.Error
}

func (d *BatchDAO) LinkVideo(ctx context.Context, itemUUID, videoUUID string) error {
	return d.db.WithContext(ctx).Model(&po.BatchItem{}).
		Where("item_uuid = ?", itemUUID).
		Updates(map[string]interface{}{"video_uuid": videoUUID, "updated_at": time.Now()}).Error
}

// ResolveItem 在一个事务内条件更新子项并递增批量计数，counter 为 completed_count 或 failed_count。
// 子项未命中源状态时返回 0 且不修改计数。
func (d *BatchDAO) ResolveItem(ctx context.Context, itemUUID string, from []string, to, errorMessage, counter string) (*po.BatchJob, int64, error) {
	var (
		batch    po.BatchJob
		affected int64
	)
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item po.BatchItem
		if err := tx.Where("item_uuid = ?", itemUUID).First(&item).Error; err != nil {
			return err
		}
		now := time.Now()
		updates := map[string]interface{}{"status": to, "updated_at": now}
		if errorMessage != "" {
			updates["error_message"] = errorMessage
		}
		res := tx.Model(&po.BatchItem{}).
			Where("item_uuid = ? AND status IN ?", itemUUID, from).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		affected = res.RowsAffected
		if affected == 1 {
			res = tx.Model(&po.BatchJob{}).
				Where("batch_uuid = ? AND completed_count + failed_count < total_count", item.BatchUUID).
				Updates(map[string]interface{}{
					counter:      gorm.Expr(counter+" + ?", 1),
					"updated_at": now,
				})
			if res.Error != nil {
				return res.Error
			}
		}
		return tx.Where("batch_uuid = ?", item.BatchUUID).First(&batch).Error
	})
	if err != nil {
		return nil, 0, err
	}
	return &batch, affected, nil
}
