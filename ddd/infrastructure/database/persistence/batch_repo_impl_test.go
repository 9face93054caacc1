package persistence

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"videogen-service/ddd/domain/entity"
	"videogen-service/ddd/domain/vo"
	"videogen-service/pkg/errno"
)

func newTestBatch(t *testing.T, user string, n int) *entity.BatchJob {
	t.Helper()
	inputs := make([]vo.GenerationParams, 0, n)
	for i := 0; i < n; i++ {
		inputs = append(inputs, vo.GenerationParams{Prompt: "a cat"})
	}
	b, err := entity.NewBatchJob(user, vo.ProviderText2Video, vo.ProviderConfig{Model: "m1", Duration: 5}, inputs)
	require.NoError(t, err)
	return b
}

func TestBatchRepositoryCreateAndGet(t *testing.T) {
	ctx := context.Background()
	r := NewBatchRepository(openTestDB(t))
	b := newTestBatch(t, "user-1", 3)
	require.NoError(t, r.CreateBatch(ctx, b))

	got, err := r.GetBatch(ctx, "user-1", b.BatchUUID())
	require.NoError(t, err)
	assert.Equal(t, vo.BatchStatusPending, got.Status())
	assert.Equal(t, 3, got.TotalCount())
	assert.Equal(t, "m1", got.Config().Model)
	require.Len(t, got.Items(), 3)
	for i, item := range got.Items() {
		assert.Equal(t, i, item.Index())
		assert.Equal(t, vo.ItemStatusPending, item.Status())
	}

	_, err = r.GetBatch(ctx, "user-2", b.BatchUUID())
	assert.True(t, errors.Is(err, errno.ErrBatchNotFound))
}

func TestBatchRepositoryListBatches(t *testing.T) {
	ctx := context.Background()
	r := NewBatchRepository(openTestDB(t))
	for i := 0; i < 3; i++ {
		require.NoError(t, r.CreateBatch(ctx, newTestBatch(t, "user-1", 1)))
	}
	require.NoError(t, r.CreateBatch(ctx, newTestBatch(t, "user-2", 1)))

	page, total, err := r.ListBatches(ctx, "user-1", 0, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, page, 2)
}

func TestBatchRepositoryTransitions(t *testing.T) {
	ctx := context.Background()
	r := NewBatchRepository(openTestDB(t))
	b := newTestBatch(t, "user-1", 1)
	require.NoError(t, r.CreateBatch(ctx, b))

	require.NoError(t, r.TransitionBatch(ctx, "user-1", b.BatchUUID(), entity.StartBatch(time.Now())))
	err := r.TransitionBatch(ctx, "user-1", b.BatchUUID(), entity.StartBatch(time.Now()))
	assert.True(t, errors.Is(err, errno.ErrInvalidTransition))

	require.NoError(t, r.TransitionBatch(ctx, "user-1", b.BatchUUID(), entity.CancelBatch(time.Now())))
	got, err := r.GetBatch(ctx, "user-1", b.BatchUUID())
	require.NoError(t, err)
	assert.Equal(t, vo.BatchStatusCancelled, got.Status())
	assert.NotNil(t, got.StartedAt())
	assert.NotNil(t, got.CompletedAt())

	err = r.TransitionBatch(ctx, "user-1", "missing", entity.CancelBatch(time.Now()))
	assert.True(t, errors.Is(err, errno.ErrBatchNotFound))
}

func TestBatchRepositoryResolveItemCountsOnce(t *testing.T) {
	ctx := context.Background()
	r := NewBatchRepository(openTestDB(t))
	b := newTestBatch(t, "user-1", 2)
	require.NoError(t, r.CreateBatch(ctx, b))
	item := b.Items()[0]

	// pending 子项不能直接完成
	_, err := r.ResolveItem(ctx, item.ItemUUID(), entity.ResolveItem(true, ""))
	assert.True(t, errors.Is(err, errno.ErrInvalidTransition))

	require.NoError(t, r.StartItem(ctx, item.ItemUUID()))
	assert.True(t, errors.Is(r.StartItem(ctx, item.ItemUUID()), errno.ErrInvalidTransition))
	require.NoError(t, r.LinkItemVideo(ctx, item.ItemUUID(), "video-1"))

	updated, err := r.ResolveItem(ctx, item.ItemUUID(), entity.ResolveItem(true, ""))
	require.NoError(t, err)
	assert.Equal(t, 1, updated.CompletedCount())
	assert.Equal(t, 0, updated.FailedCount())

	_, err = r.ResolveItem(ctx, item.ItemUUID(), entity.ResolveItem(false, "late failure"))
	assert.True(t, errors.Is(err, errno.ErrInvalidTransition))

	stored, err := r.GetItem(ctx, item.ItemUUID())
	require.NoError(t, err)
	assert.Equal(t, vo.ItemStatusCompleted, stored.Status())
	assert.Equal(t, "video-1", stored.VideoUUID())

	cancelled, err := r.ResolveItem(ctx, b.Items()[1].ItemUUID(), entity.CancelItem())
	require.NoError(t, err)
	assert.Equal(t, 1, cancelled.CompletedCount())
	assert.Equal(t, 1, cancelled.FailedCount())
}

func TestBatchRepositoryConcurrentResolutionIsExact(t *testing.T) {
	ctx := context.Background()
	r := NewBatchRepository(openTestDB(t))
	b := newTestBatch(t, "user-1", 6)
	require.NoError(t, r.CreateBatch(ctx, b))
	for _, item := range b.Items() {
		require.NoError(t, r.StartItem(ctx, item.ItemUUID()))
	}

	var wg sync.WaitGroup
	for i, item := range b.Items() {
		// 每个子项被两个协程同时结算，只能计数一次
		for j := 0; j < 2; j++ {
			wg.Add(1)
			go func(itemUUID string, success bool) {
				defer wg.Done()
				_, _ = r.ResolveItem(ctx, itemUUID, entity.ResolveItem(success, "boom"))
			}(item.ItemUUID(), i%2 == 0)
		}
	}
	wg.Wait()

	got, err := r.GetBatch(ctx, "user-1", b.BatchUUID())
	require.NoError(t, err)
	assert.Equal(t, 3, got.CompletedCount())
	assert.Equal(t, 3, got.FailedCount())
	assert.Equal(t, 100, got.Progress())
}
