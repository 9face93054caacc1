package persistence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"videogen-service/ddd/domain/entity"
	"videogen-service/ddd/domain/vo"
	"videogen-service/ddd/infrastructure/database/dao"
	"videogen-service/ddd/infrastructure/database/po"
	"videogen-service/pkg/errno"
)

func TestPostRepositoryLifecycle(t *testing.T) {
	ctx := context.Background()
	r := NewPostRepository(openTestDB(t))
	post, err := entity.NewTikTokPost("user-1", "video-1", "acct-1", "hi")
	require.NoError(t, err)
	require.NoError(t, r.CreatePost(ctx, post))

	accepted, err := r.TransitionPost(ctx, "user-1", post.PostUUID(), entity.AcceptPost("pub-1"))
	require.NoError(t, err)
	assert.Equal(t, vo.PostStatusProcessing, accepted.Status())
	assert.Equal(t, "pub-1", accepted.PublishID())

	byPublish, err := r.FindPostByPublishID(ctx, "pub-1")
	require.NoError(t, err)
	assert.Equal(t, post.PostUUID(), byPublish.PostUUID())

	done, err := r.TransitionPost(ctx, "user-1", post.PostUUID(), entity.CompletePost("7301", time.Now()))
	require.NoError(t, err)
	assert.Equal(t, vo.PostStatusCompleted, done.Status())
	assert.Equal(t, "7301", done.PublicID())
	assert.NotNil(t, done.PostedAt())
	assert.Equal(t, 100, done.Progress())

	_, err = r.TransitionPost(ctx, "user-1", post.PostUUID(), entity.FailPost("late"))
	assert.True(t, errors.Is(err, errno.ErrInvalidTransition))

	_, err = r.GetPost(ctx, "user-2", post.PostUUID())
	assert.True(t, errors.Is(err, errno.ErrPostNotFound))

	processing, err := r.ListPostsByStatus(ctx, vo.PostStatusProcessing, 10)
	require.NoError(t, err)
	assert.Empty(t, processing)
}

func TestAccountRepositoryGetAccessToken(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	postDao := dao.NewPostDAO(db)
	past := time.Now().Add(-time.Hour)
	require.NoError(t, postDao.SaveAccount(ctx, &po.TikTokAccount{UserUUID: "user-1", AccountID: "acct-1", AccessToken: "tok"}))
	require.NoError(t, postDao.SaveAccount(ctx, &po.TikTokAccount{UserUUID: "user-1", AccountID: "acct-old", AccessToken: "old", ExpiresAt: &past}))

	r := NewAccountRepository(db)
	token, err := r.GetAccessToken(ctx, "user-1", "acct-1")
	require.NoError(t, err)
	assert.Equal(t, "tok", token)

	_, err = r.GetAccessToken(ctx, "user-1", "acct-old")
	assert.True(t, errors.Is(err, errno.ErrUnauthorized))

	_, err = r.GetAccessToken(ctx, "user-2", "acct-1")
	assert.True(t, errors.Is(err, errno.ErrUnauthorized))
}
