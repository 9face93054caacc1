package entity

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"videogen-service/ddd/domain/vo"
	"videogen-service/pkg/errno"
)

func newDraft(t *testing.T) *Video {
	t.Helper()
	v, err := NewVideo("user-1", vo.ProviderAvatar, vo.GenerationParams{Script: "buy this"}, "")
	require.NoError(t, err)
	return v
}

func TestNewVideoValidation(t *testing.T) {
	v := newDraft(t)
	assert.Equal(t, vo.VideoStatusDraft, v.Status())
	assert.NotEmpty(t, v.VideoUUID())
	assert.Equal(t, "draft", v.DisplayMessage())
	assert.True(t, v.ShouldContinuePolling())

	_, err := NewVideo("", vo.ProviderAvatar, vo.GenerationParams{Script: "x"}, "")
	assert.True(t, errors.Is(err, errno.ErrUserUUIDRequired))

	_, err = NewVideo("user-1", vo.ProviderType("sora"), vo.GenerationParams{Script: "x"}, "")
	assert.True(t, errors.Is(err, errno.ErrUnknownProvider))

	_, err = NewVideo("user-1", vo.ProviderText2Video, vo.GenerationParams{Script: "x"}, "")
	assert.True(t, errors.Is(err, errno.ErrInvalidParam))
}

func TestVideoLifecycle(t *testing.T) {
	v := newDraft(t)
	require.NoError(t, v.Apply(StartGeneration()))
	assert.Equal(t, vo.VideoStatusGenerating, v.Status())
	assert.Equal(t, 10, v.Progress())

	require.NoError(t, v.Apply(CompleteGeneration("https://cdn/v.mp4")))
	assert.Equal(t, vo.VideoStatusReady, v.Status())
	assert.Equal(t, 100, v.Progress())
	assert.Equal(t, "https://cdn/v.mp4", v.RemoteURL())
	assert.Equal(t, "done", v.DisplayMessage())

	require.NoError(t, v.Apply(StartPublishing()))
	require.NoError(t, v.Apply(CompletePublishing()))
	assert.Equal(t, vo.VideoStatusPosted, v.Status())
	assert.False(t, v.ShouldContinuePolling())
}

func TestVideoCancelOnlyWhileGenerating(t *testing.T) {
	v := newDraft(t)
	err := v.Apply(CancelGeneration())
	assert.True(t, errors.Is(err, errno.ErrInvalidTransition))

	require.NoError(t, v.Apply(StartGeneration()))
	require.NoError(t, v.Apply(CancelGeneration()))
	assert.Equal(t, vo.VideoStatusCancelled, v.Status())
	assert.Equal(t, 0, v.Progress())
	assert.Equal(t, vo.CancelledMessage, v.DisplayMessage())

	// 取消后的迟到结果被拒绝
	err = v.Apply(CompleteGeneration("https://cdn/late.mp4"))
	assert.True(t, errors.Is(err, errno.ErrInvalidTransition))
	assert.Empty(t, v.RemoteURL())
}

func TestVideoTransitionValidate(t *testing.T) {
	assert.True(t, errors.Is(CompleteGeneration("").Validate(), errno.ErrInvalidParam))
	assert.True(t, errors.Is(FailGeneration("").Validate(), errno.ErrInvalidParam))
	assert.NoError(t, FailGeneration("quota exceeded").Validate())

	bad := VideoTransition{From: []vo.VideoStatus{vo.VideoStatusDraft}, To: vo.VideoStatusReady, RemoteURL: "u"}
	assert.True(t, errors.Is(bad.Validate(), errno.ErrInvalidTransition))

	empty := VideoTransition{To: vo.VideoStatusGenerating}
	assert.True(t, errors.Is(empty.Validate(), errno.ErrInvalidTransition))
}
