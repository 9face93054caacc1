package persistence

import (
	"context"
	"time"

	"gorm.io/gorm"

	"videogen-service/ddd/domain/entity"
	"videogen-service/ddd/domain/repo"
	"videogen-service/ddd/domain/vo"
	"videogen-service/ddd/infrastructure/database/convertor"
	"videogen-service/ddd/infrastructure/database/dao"
	"videogen-service/pkg/errno"
)

type batchRepositoryImpl struct {
	batchDao  *dao.BatchDAO
	convertor *convertor.BatchConvertor
}

func NewBatchRepository(db *gorm.DB) repo.BatchRepository {
	return &batchRepositoryImpl{
		batchDao:  dao.NewBatchDAO(db),
		convertor: convertor.NewBatchConvertor(),
	}
}

func (r *batchRepositoryImpl) CreateBatch(ctx context.Context, batch *entity.BatchJob) error {
	batchPo, items := r.convertor.ToPO(batch)
	return wrapErr(r.batchDao.CreateWithItems(ctx, batchPo, items), errno.ErrBatchNotFound)
}

func (r *batchRepositoryImpl) GetBatch(ctx context.Context, userUUID, batchUUID string) (*entity.BatchJob, error) {
	if batchUUID == "" {
		return nil, errno.ErrBatchUUIDRequired
	}
	batchPo, err := r.batchDao.FindOwned(ctx, userUUID, batchUUID)
	if err != nil {
		return nil, wrapErr(err, errno.ErrBatchNotFound)
	}
	items, err := r.batchDao.ItemsByBatch(ctx, batchUUID)
	if err != nil {
		return nil, wrapErr(err, errno.ErrItemNotFound)
	}
	return r.convertor.ToEntity(batchPo, items), nil
}

func (r *batchRepositoryImpl) ListBatches(ctx context.Context, userUUID string, offset, limit int) ([]*entity.BatchJob, int64, error) {
	pos, total, err := r.batchDao.ListByUser(ctx, userUUID, offset, limit)
	if err != nil {
		return nil, 0, wrapErr(err, errno.ErrBatchNotFound)
	}
	batches := make([]*entity.BatchJob, 0, len(pos))
	for _, p := range pos {
		batches = append(batches, r.convertor.ToEntity(p, nil))
	}
	return batches, total, nil
}

func (r *batchRepositoryImpl) TransitionBatch(ctx context.Context, userUUID, batchUUID string, t entity.BatchTransition) error {
	if err := t.Validate(); err != nil {
		return err
	}
	updates := map[string]interface{}{
		"status":     string(t.To),
		"updated_at": time.Now(),
	}
	if t.StartedAt != nil {
		updates["started_at"] = *t.StartedAt
	}
	if t.CompletedAt != nil {
		updates["completed_at"] = *t.CompletedAt
	}
	from := make([]string, 0, len(t.From))
	for _, s := range t.From {
		from = append(from, s.String())
	}

	affected, err := r.batchDao.ConditionalUpdate(ctx, userUUID, batchUUID, from, updates)
	if err != nil {
		return wrapErr(err, errno.ErrBatchNotFound)
	}
	if affected == 0 {
		current, err := r.batchDao.FindOwned(ctx, userUUID, batchUUID)
		if err != nil {
			return wrapErr(err, errno.ErrBatchNotFound)
		}
		return errno.Errorf(errno.ErrInvalidTransition, "batch %s is %s, cannot move to %s", batchUUID, current.Status, t.To)
	}
	return nil
}

func (r *batchRepositoryImpl) GetItem(ctx context.Context, itemUUID string) (*entity.BatchItem, error) {
	p, err := r.batchDao.FindItem(ctx, itemUUID)
	if err != nil {
		return nil, wrapErr(err, errno.ErrItemNotFound)
	}
	return r.convertor.ItemToEntity(p), nil
}

func (r *batchRepositoryImpl) StartItem(ctx context.Context, itemUUID string) error {
	t := entity.StartItem()
	affected, err := r.batchDao.UpdateItemStatus(ctx, itemUUID, itemStatusStrings(t.From), map[string]interface{}{
		"status":     string(t.To),
		"updated_at": time.Now(),
	})
	if err != nil {
		return wrapErr(err, errno.ErrItemNotFound)
	}
	if affected == 0 {
		return r.rejectItem(ctx, itemUUID, t.To)
	}
	return nil
}

func (r *batchRepositoryImpl) LinkItemVideo(ctx context.Context, itemUUID, videoUUID string) error {
	return wrapErr(r.batchDao.LinkVideo(ctx, itemUUID, videoUUID), errno.ErrItemNotFound)
}

func (r *batchRepositoryImpl) ResolveItem(ctx context.Context, itemUUID string, t entity.ItemTransition) (*entity.BatchJob, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	counter := "completed_count"
	if t.To == vo.ItemStatusFailed {
		counter = "failed_count"
	}
	batchPo, affected, err := r.batchDao.ResolveItem(ctx, itemUUID, itemStatusStrings(t.From), string(t.To), t.ErrorMessage, counter)
	if err != nil {
		return nil, wrapErr(err, errno.ErrItemNotFound)
	}
	if affected == 0 {
		return nil, r.rejectItem(ctx, itemUUID, t.To)
	}
	return r.convertor.ToEntity(batchPo, nil), nil
}

func (r *batchRepositoryImpl) rejectItem(ctx context.Context, itemUUID string, to vo.ItemStatus) error {
	item, err := r.batchDao.FindItem(ctx, itemUUID)
	if err != nil {
		return wrapErr(err, errno.ErrItemNotFound)
	}
	return errno.Errorf(errno.ErrInvalidTransition, "item %s is %s, cannot move to %s", itemUUID, item.Status, to)
}

func itemStatusStrings(statuses []vo.ItemStatus) []string {
	out := make([]string, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, s.String())
	}
	return out
}
