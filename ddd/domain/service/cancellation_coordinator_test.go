package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"videogen-service/ddd/domain/entity"
	"videogen-service/ddd/domain/vo"
	"videogen-service/pkg/errno"
)

func TestCancelGeneratingVideo(t *testing.T) {
	h := newHarness(t, OrchestratorOptions{})
	v := h.generatingVideo(t)

	cancelled, err := h.cancellation.CancelVideo(context.Background(), testUser, v.VideoUUID())
	require.NoError(t, err)
	assert.Equal(t, vo.VideoStatusCancelled, cancelled.Status())
	assert.Equal(t, 0, cancelled.Progress())
	assert.Equal(t, vo.CancelledMessage, cancelled.DisplayMessage())
	assert.Equal(t, []string{"generating", "cancelled"}, h.events.statuses("video", v.VideoUUID()))
}

func TestCancelVideoRejections(t *testing.T) {
	h := newHarness(t, OrchestratorOptions{})
	ctx := context.Background()

	draft := h.draftVideo(t)
	_, err := h.cancellation.CancelVideo(ctx, testUser, draft.VideoUUID())
	assert.True(t, errors.Is(err, errno.ErrInvalidState))

	generating := h.generatingVideo(t)
	_, err = h.cancellation.CancelVideo(ctx, "someone-else", generating.VideoUUID())
	assert.True(t, errors.Is(err, errno.ErrVideoNotFound))
	_, err = h.cancellation.CancelVideo(ctx, testUser, "missing")
	assert.True(t, errors.Is(err, errno.ErrVideoNotFound))
	assert.Equal(t, vo.VideoStatusGenerating, h.video(t, generating.VideoUUID()).Status())
}

func TestCancelVideoTwice(t *testing.T) {
	h := newHarness(t, OrchestratorOptions{})
	v := h.generatingVideo(t)
	ctx := context.Background()

	first, err := h.cancellation.CancelVideo(ctx, testUser, v.VideoUUID())
	require.NoError(t, err)
	_, err = h.cancellation.CancelVideo(ctx, testUser, v.VideoUUID())
	assert.True(t, errors.Is(err, errno.ErrInvalidState))

	stored := h.video(t, v.VideoUUID())
	assert.Equal(t, first.Status(), stored.Status())
	assert.Equal(t, first.Message(), stored.Message())
}

func TestCancelAfterProviderFinished(t *testing.T) {
	h := newHarness(t, OrchestratorOptions{})
	ready := h.readyVideo(t)

	_, err := h.cancellation.CancelVideo(context.Background(), testUser, ready.VideoUUID())
	assert.True(t, errors.Is(err, errno.ErrInvalidState))

	stored := h.video(t, ready.VideoUUID())
	assert.Equal(t, vo.VideoStatusReady, stored.Status())
	assert.Equal(t, ready.RemoteURL(), stored.RemoteURL())
}

func TestLateCallbackAfterCancel(t *testing.T) {
	h := newHarness(t, OrchestratorOptions{})
	v := h.generatingVideo(t)
	ctx := context.Background()

	_, err := h.cancellation.CancelVideo(ctx, testUser, v.VideoUUID())
	require.NoError(t, err)

	_, err = h.generation.Resolve(ctx, vo.ProviderAvatar, &vo.JobResult{ReferenceID: v.VideoUUID(), Success: true, ResultURL: "https://cdn.local/late.mp4"})
	assert.True(t, errors.Is(err, errno.ErrInvalidTransition))

	stored := h.video(t, v.VideoUUID())
	assert.Equal(t, vo.VideoStatusCancelled, stored.Status())
	assert.Empty(t, stored.RemoteURL())
}

func TestCancelRacesProviderCallback(t *testing.T) {
	for i := 0; i < 10; i++ {
		h := newHarness(t, OrchestratorOptions{})
		v := h.generatingVideo(t)
		ctx := context.Background()

		var (
			wg                   sync.WaitGroup
			cancelled            *entity.Video
			resolved             *entity.Video
			cancelErr, resolveEr error
		)
		wg.Add(2)
		go func() {
			defer wg.Done()
			cancelled, cancelErr = h.cancellation.CancelVideo(ctx, testUser, v.VideoUUID())
		}()
		go func() {
			defer wg.Done()
			resolved, resolveEr = h.generation.Resolve(ctx, vo.ProviderAvatar,
				&vo.JobResult{ReferenceID: v.VideoUUID(), Success: true, ResultURL: "https://cdn.local/v.mp4"})
		}()
		wg.Wait()

		// 恰好一方胜出
		require.True(t, (cancelErr == nil) != (resolveEr == nil), "cancel=%v resolve=%v", cancelErr, resolveEr)
		stored := h.video(t, v.VideoUUID())
		if cancelErr == nil {
			assert.Equal(t, vo.VideoStatusCancelled, cancelled.Status())
			assert.Equal(t, vo.VideoStatusCancelled, stored.Status())
			assert.True(t, errors.Is(resolveEr, errno.ErrInvalidTransition))
		} else {
			assert.Equal(t, vo.VideoStatusReady, resolved.Status())
			assert.Equal(t, vo.VideoStatusReady, stored.Status())
			assert.True(t, errors.Is(cancelErr, errno.ErrInvalidState) || errors.Is(cancelErr, errno.ErrInvalidTransition))
		}
	}
}
