package dao

import (
	"context"

	"gorm.io/gorm"

	"videogen-service/ddd/infrastructure/database/po"
)

type PostDAO struct {
	db *gorm.DB
}

func NewPostDAO(db *gorm.DB) *PostDAO {
	return &PostDAO{db: db}
}

func (d *PostDAO) Create(ctx context.Context, post *po.TikTokPost) error {
	return d.db.WithContext(ctx).Model(&po.TikTokPost{}).Create(post).Error
}

func (d *PostDAO) FindOwned(ctx context.Context, userUUID, postUUID string) (*po.TikTokPost, error) {
	var post po.TikTokPost
	if err := d.db.WithContext(ctx).Where("post_uuid = ? AND user_uuid = ?", postUUID, userUUID).First(&post).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

func (d *PostDAO) FindByUUID(ctx context.Context, postUUID string) (*po.TikTokPost, error) {
	var post po.TikTokPost
	if err := d.db.WithContext(ctx).Where("post_uuid = ?", postUUID).First(&post).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

func (d *PostDAO) FindByPublishID(ctx context.Context, publishID string) (*po.TikTokPost, error) {
	var post po.TikTokPost
	if err := d.db.WithContext(ctx).Where("publish_id = ?", publishID).First(&post).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

// ConditionalUpdate 仅当状态在 from 中时更新
func (d *PostDAO) ConditionalUpdate(ctx context.Context, userUUID, postUUID string, from []string, updates map[string]interface{}) (int64, error) {
	res := d.db.WithContext(ctx).Model(&po.TikTokPost{}).
		Where("post_uuid = ? AND user_uuid = ? AND status IN ?", postUUID, userUUID, from).
		Updates(updates)
	return res.RowsAffected, res.Error
}

func (d *PostDAO) QueryByStatus(ctx context.Context, status string, limit int) ([]*po.TikTokPost, error) {
	var posts []*po.TikTokPost
	q := d.db.WithContext(ctx).Where("status = ?", status).Order("updated_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

func (d *PostDAO) FindAccount(ctx context.Context, userUUID, accountID string) (*po.TikTokAccount, error) {
	var account po.TikTokAccount
	if err := d.db.WithContext(ctx).Where("user_uuid = ? AND account_id = ?", userUUID, accountID).First(&account).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

func (d *PostDAO) SaveAccount(ctx context.Context, account *po.TikTokAccount) error {
	return d.db.WithContext(ctx).Create(account).Error
}
