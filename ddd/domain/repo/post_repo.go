package repo

import (
	"context"

	"videogen-service/ddd/domain/entity"
	"videogen-service/ddd/domain/vo"
)

// PostRepository 发布记录仓储接口
type PostRepository interface {
	CreatePost(ctx context.Context, post *entity.TikTokPost) error
	// GetPost 按所有者读取
	GetPost(ctx context.Context, userUUID, postUUID string) (*entity.TikTokPost, error)
	// FindPost 不带所有者过滤
	FindPost(ctx context.Context, postUUID string) (*entity.TikTokPost, error)
	// FindPostByPublishID 按平台返回的 publish_id 查找
	FindPostByPublishID(ctx context.Context, publishID string) (*entity.TikTokPost, error)
	// TransitionPost 条件更新
	TransitionPost(ctx context.Context, userUUID, postUUID string, t entity.PostTransition) (*entity.TikTokPost, error)
	// ListPostsByStatus 按更新时间升序列出指定状态的发布记录
	ListPostsByStatus(ctx context.Context, status vo.PostStatus, limit int) ([]*entity.TikTokPost, error)
}
