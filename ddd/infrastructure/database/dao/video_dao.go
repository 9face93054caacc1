package dao

import (
	"context"

	"gorm.io/gorm"

	"videogen-service/ddd/infrastructure/database/po"
)

type VideoDAO struct {
	db *gorm.DB
}

func NewVideoDAO(db *gorm.DB) *VideoDAO {
	return &VideoDAO{db: db}
}

func (d *VideoDAO) Create(ctx context.Context, video *po.Video) error {
	return d.db.WithContext(ctx).Model(&po.Video{}).Create(video).Error
}

func (d *VideoDAO) FindOwned(ctx context.Context, userUUID, videoUUID string) (*po.Video, error) {
	var video po.Video
	if err := d.db.WithContext(ctx).Where("video_uuid = ? AND user_uuid = ?", videoUUID, userUUID).First(&video).Error; err != nil {
		return nil, err
	}
	return &video, nil
}

func (d *VideoDAO) FindByUUID(ctx context.Context, videoUUID string) (*po.Video, error) {
	var video po.Video
	if err := d.db.WithContext(ctx).Where("video_uuid = ?", videoUUID).First(&video).Error; err != nil {
		return nil, err
	}
	return &video, nil
}

func (d *VideoDAO) FindByJob(ctx context.Context, provider, jobID string) (*po.Video, error) {
	var video po.Video
	if err := d.db.WithContext(ctx).Where("provider = ? AND generation_job_id = ?", provider, jobID).First(&video).Error; err != nil {
		return nil, err
	}
	return &video, nil
}

// ConditionalUpdate 仅当状态在 from 中时更新，返回影响行数
func (d *VideoDAO) ConditionalUpdate(ctx context.Context, userUUID, videoUUID string, from []string, updates map[string]interface{}) (int64, error) {
	res := d.db.WithContext(ctx).Model(&po.Video{}).
		Where("video_uuid = ? AND user_uuid = ? AND status IN ?", videoUUID, userUUID, from).
		Updates(updates)
	return res.RowsAffected, res.Error
}

func (d *VideoDAO) AttachJob(ctx context.Context, videoUUID, status, jobID string) (int64, error) {
	res := d.db.WithContext(ctx).Model(&po.Video{}).
		Where("video_uuid = ? AND status = ?", videoUUID, status).
		Update("generation_job_id", jobID)
	return res.RowsAffected, res.Error
}

func (d *VideoDAO) QueryByStatus(ctx context.Context, status string, limit int) ([]*po.Video, error) {
	var videos []*po.Video
	q := d.db.WithContext(ctx).Where("status = ?", status).Order("updated_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&videos).Error; err != nil {
		return nil, err
	}
	return videos, nil
}
