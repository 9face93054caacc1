package entity

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"videogen-service/ddd/domain/vo"
	"videogen-service/pkg/errno"
)

func nowForTest() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }

func TestNewTikTokPost(t *testing.T) {
	p, err := NewTikTokPost("user-1", "video-1", "acct-1", "caption")
	require.NoError(t, err)
	assert.Equal(t, vo.PostStatusPending, p.Status())
	assert.Equal(t, 0, p.Progress())
	assert.True(t, p.ShouldContinuePolling())

	_, err = NewTikTokPost("user-1", "video-1", " ", "caption")
	assert.True(t, errors.Is(err, errno.ErrAccountRequired))
	_, err = NewTikTokPost("user-1", "", "acct-1", "caption")
	assert.True(t, errors.Is(err, errno.ErrVideoUUIDRequired))
}

func TestPostTransitions(t *testing.T) {
	assert.NoError(t, AcceptPost("pub-1").Validate())
	assert.NoError(t, RejectPost("token revoked").Validate())
	assert.NoError(t, CompletePost("7301", nowForTest()).Validate())
	assert.True(t, errors.Is(FailPost("").Validate(), errno.ErrInvalidParam))
	assert.Equal(t, []vo.PostStatus{vo.PostStatusProcessing}, FailPost("x").From)
}
