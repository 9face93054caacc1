package entity

import (
	"time"

	"videogen-service/ddd/domain/vo"
	"videogen-service/pkg/errno"
)

// BatchItem 批量子项，对应输入中的一行
type BatchItem struct {
	itemUUID     string
	batchUUID    string
	index        int
	status       vo.ItemStatus
	videoUUID    string
	params       vo.GenerationParams
	errorMessage string
	createdAt    time.Time
	updatedAt    time.Time
}

// BatchItemAttrs 从存储恢复实体时使用
type BatchItemAttrs struct {
	ItemUUID     string
	BatchUUID    string
	Index        int
	Status       vo.ItemStatus
	VideoUUID    string
	Params       vo.GenerationParams
	ErrorMessage string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// RestoreBatchItem 按存储数据重建实体
func RestoreBatchItem(a BatchItemAttrs) *BatchItem {
	return &BatchItem{
		itemUUID:     a.ItemUUID,
		batchUUID:    a.BatchUUID,
		index:        a.Index,
		status:       a.Status,
		videoUUID:    a.VideoUUID,
		params:       a.Params,
		errorMessage: a.ErrorMessage,
		createdAt:    a.CreatedAt,
		updatedAt:    a.UpdatedAt,
	}
}

func (i *BatchItem) ItemUUID() string            { return i.itemUUID }
func (i *BatchItem) BatchUUID() string           { return i.batchUUID }
func (i *BatchItem) Index() int                  { return i.index }
func (i *BatchItem) Status() vo.ItemStatus       { return i.status }
func (i *BatchItem) VideoUUID() string           { return i.videoUUID }
func (i *BatchItem) Params() vo.GenerationParams { return i.params }
func (i *BatchItem) ErrorMessage() string        { return i.errorMessage }
func (i *BatchItem) CreatedAt() time.Time        { return i.createdAt }
func (i *BatchItem) UpdatedAt() time.Time        { return i.updatedAt }

// ItemTransition 子项状态迁移
type ItemTransition struct {
	From         []vo.ItemStatus
	To           vo.ItemStatus
	ErrorMessage string
}

// Validate 检查迁移是否在状态表内，失败必须带原因
func (t ItemTransition) Validate() error {
	if len(t.From) == 0 {
		return errno.Errorf(errno.ErrInvalidTransition, "no source status for %s", t.To)
	}
	for _, s := range t.From {
		if !s.CanTransitionTo(t.To) {
			return errno.Errorf(errno.ErrInvalidTransition, "%s -> %s is not allowed", s, t.To)
		}
	}
	if t.To == vo.ItemStatusFailed && t.ErrorMessage == "" {
		return errno.Errorf(errno.ErrInvalidParam, "failed item requires error message")
	}
	return nil
}

// StartItem 子项开始派发
func StartItem() ItemTransition {
	return ItemTransition{From: []vo.ItemStatus{vo.ItemStatusPending}, To: vo.ItemStatusProcessing}
}

// ResolveItem 生成任务结束
func ResolveItem(success bool, reason string) ItemTransition {
	if success {
		return ItemTransition{From: []vo.ItemStatus{vo.ItemStatusProcessing}, To: vo.ItemStatusCompleted}
	}
	return ItemTransition{From: []vo.ItemStatus{vo.ItemStatusProcessing}, To: vo.ItemStatusFailed, ErrorMessage: reason}
}

// CancelItem 批量取消时未结束的子项直接记为失败
func CancelItem() ItemTransition {
	return ItemTransition{
		From:         []vo.ItemStatus{vo.ItemStatusPending, vo.ItemStatusProcessing},
		To:           vo.ItemStatusFailed,
		ErrorMessage: "cancelled",
	}
}
