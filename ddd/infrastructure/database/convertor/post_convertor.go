package convertor

import (
	"videogen-service/ddd/domain/entity"
	"videogen-service/ddd/domain/vo"
	"videogen-service/ddd/infrastructure/database/po"
)

// PostConvertor 发布记录转换器
type PostConvertor struct{}

// NewPostConvertor 创建发布记录转换器
func NewPostConvertor() *PostConvertor {
	return &PostConvertor{}
}

// ToEntity 将PO转换为Entity
func (c *PostConvertor) ToEntity(p *po.TikTokPost) *entity.TikTokPost {
	return entity.RestoreTikTokPost(entity.TikTokPostAttrs{
		PostUUID:     p.PostUUID,
		VideoUUID:    p.VideoUUID,
		UserUUID:     p.UserUUID,
		AccountID:    p.AccountID,
		Caption:      p.Caption,
		Status:       vo.PostStatus(p.Status),
		PublishID:    p.PublishID,
		PublicID:     p.PublicID,
		ErrorMessage: p.ErrorMessage,
		PostedAt:     p.PostedAt,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	})
}

// ToPO 将Entity转换为PO
func (c *PostConvertor) ToPO(e *entity.TikTokPost) *po.TikTokPost {
	return &po.TikTokPost{
		BaseModel: po.BaseModel{
			CreatedAt: e.CreatedAt(),
			UpdatedAt: e.UpdatedAt(),
		},
		PostUUID:     e.PostUUID(),
		VideoUUID:    e.VideoUUID(),
		UserUUID:     e.UserUUID(),
		AccountID:    e.AccountID(),
		Caption:      e.Caption(),
		Status:       e.Status().String(),
		PublishID:    e.PublishID(),
		PublicID:     e.PublicID(),
		ErrorMessage: e.ErrorMessage(),
		PostedAt:     e.PostedAt(),
	}
}

// ToEntities 批量将PO转换为Entity
func (c *PostConvertor) ToEntities(pos []*po.TikTokPost) []*entity.TikTokPost {
	posts := make([]*entity.TikTokPost, 0, len(pos))
	for _, p := range pos {
		posts = append(posts, c.ToEntity(p))
	}
	return posts
}
