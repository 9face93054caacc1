package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"videogen-service/ddd/domain/entity"
	"videogen-service/ddd/domain/repo"
	"videogen-service/ddd/domain/vo"
	"videogen-service/ddd/infrastructure/database/convertor"
	"videogen-service/ddd/infrastructure/database/dao"
	"videogen-service/pkg/errno"
)

type postRepositoryImpl struct {
	postDao   *dao.PostDAO
	convertor *convertor.PostConvertor
}

func NewPostRepository(db *gorm.DB) repo.PostRepository {
	return &postRepositoryImpl{
		postDao:   dao.NewPostDAO(db),
		convertor: convertor.NewPostConvertor(),
	}
}

func (r *postRepositoryImpl) CreatePost(ctx context.Context, post *entity.TikTokPost) error {
	return wrapErr(r.postDao.Create(ctx, r.convertor.ToPO(post)), errno.ErrPostNotFound)
}

func (r *postRepositoryImpl) GetPost(ctx context.Context, userUUID, postUUID string) (*entity.TikTokPost, error) {
	if postUUID == "" {
		return nil, errno.ErrPostUUIDRequired
	}
	p, err := r.postDao.FindOwned(ctx, userUUID, postUUID)
	if err != nil {
		return nil, wrapErr(err, errno.ErrPostNotFound)
	}
	return r.convertor.ToEntity(p), nil
}

func (r *postRepositoryImpl) FindPost(ctx context.Context, postUUID string) (*entity.TikTokPost, error) {
	p, err := r.postDao.FindByUUID(ctx, postUUID)
	if err != nil {
		return nil, wrapErr(err, errno.ErrPostNotFound)
	}
	return r.convertor.ToEntity(p), nil
}

func (r *postRepositoryImpl) FindPostByPublishID(ctx context.Context, publishID string) (*entity.TikTokPost, error) {
	p, err := r.postDao.FindByPublishID(ctx, publishID)
	if err != nil {
		return nil, wrapErr(err, errno.ErrPostNotFound)
	}
	return r.convertor.ToEntity(p), nil
}

func (r *postRepositoryImpl) TransitionPost(ctx context.Context, userUUID, postUUID string, t entity.PostTransition) (*entity.TikTokPost, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	updates := map[string]interface{}{
		"status":     string(t.To),
		"updated_at": time.Now(),
	}
	if t.PublishID != "" {
		updates["publish_id"] = t.PublishID
	}
	if t.PublicID != "" {
		updates["public_id"] = t.PublicID
	}
	if t.ErrorMessage != "" {
		updates["error_message"] = t.ErrorMessage
	}
	if t.PostedAt != nil {
		updates["posted_at"] = *t.PostedAt
	}
	from := make([]string, 0, len(t.From))
	for _, s := range t.From {
		from = append(from, s.String())
	}

	affected, err := r.postDao.ConditionalUpdate(ctx, userUUID, postUUID, from, updates)
	if err != nil {
		return nil, wrapErr(err, errno.ErrPostNotFound)
	}
	if affected == 0 {
		current, err := r.GetPost(ctx, userUUID, postUUID)
		if err != nil {
			return nil, err
		}
		return nil, errno.Errorf(errno.ErrInvalidTransition, "post %s is %s, cannot move to %s", postUUID, current.Status(), t.To)
	}
	return r.GetPost(ctx, userUUID, postUUID)
}

func (r *postRepositoryImpl) ListPostsByStatus(ctx context.Context, status vo.PostStatus, limit int) ([]*entity.TikTokPost, error) {
	pos, err := r.postDao.QueryByStatus(ctx, status.String(), limit)
	if err != nil {
		return nil, wrapErr(err, errno.ErrPostNotFound)
	}
	return r.convertor.ToEntities(pos), nil
}

type accountRepositoryImpl struct {
	postDao *dao.PostDAO
}

// NewAccountRepository TikTok账号令牌仓储
func NewAccountRepository(db *gorm.DB) repo.AccountRepository {
	return &accountRepositoryImpl{postDao: dao.NewPostDAO(db)}
}

func (r *accountRepositoryImpl) GetAccessToken(ctx context.Context, userUUID, accountID string) (string, error) {
	account, err := r.postDao.FindAccount(ctx, userUUID, accountID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", errno.Errorf(errno.ErrUnauthorized, "tiktok account %s is not linked", accountID)
	}
	if err != nil {
		return "", wrapErr(err, errno.ErrDatabase)
	}
	if strings.TrimSpace(account.AccessToken) == "" {
		return "", errno.Errorf(errno.ErrUnauthorized, "tiktok account %s has no access token", accountID)
	}
	if account.ExpiresAt != nil && account.ExpiresAt.Before(time.Now()) {
		return "", errno.Errorf(errno.ErrUnauthorized, "tiktok access token for %s expired", accountID)
	}
	return account.AccessToken, nil
}
