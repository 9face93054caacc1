package entity

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"videogen-service/ddd/domain/vo"
	"videogen-service/pkg/errno"
)

func TestNewBatchJob(t *testing.T) {
	cfg := vo.ProviderConfig{AvatarID: "av-1"}
	b, err := NewBatchJob("user-1", vo.ProviderAvatar, cfg, []vo.GenerationParams{
		{Script: "one"}, {Script: "two"}, {Script: "three"},
	})
	require.NoError(t, err)
	assert.Equal(t, vo.BatchStatusPending, b.Status())
	assert.Equal(t, 3, b.TotalCount())
	require.Len(t, b.Items(), 3)
	for i, item := range b.Items() {
		assert.Equal(t, i, item.Index())
		assert.Equal(t, vo.ItemStatusPending, item.Status())
		assert.Equal(t, b.BatchUUID(), item.BatchUUID())
	}
	assert.Equal(t, 0, b.Progress())
	assert.True(t, b.ShouldContinuePolling())
}

func TestNewBatchJobRejects(t *testing.T) {
	_, err := NewBatchJob("user-1", vo.ProviderAvatar, vo.ProviderConfig{}, nil)
	assert.True(t, errors.Is(err, errno.ErrEmptyBatch))

	_, err = NewBatchJob("user-1", vo.ProviderText2Video, vo.ProviderConfig{}, []vo.GenerationParams{{Prompt: "ok"}, {}})
	assert.True(t, errors.Is(err, errno.ErrInvalidParam))

	_, err = NewBatchJob("", vo.ProviderAvatar, vo.ProviderConfig{}, []vo.GenerationParams{{Script: "x"}})
	assert.True(t, errors.Is(err, errno.ErrUserUUIDRequired))
}

func TestBatchProgress(t *testing.T) {
	assert.Equal(t, 0, BatchProgress(0, 0, 0))
	assert.Equal(t, 33, BatchProgress(1, 0, 3))
	assert.Equal(t, 66, BatchProgress(1, 1, 3))
	assert.Equal(t, 100, BatchProgress(2, 1, 3))
	assert.Equal(t, 100, BatchProgress(3, 1, 3))
}

func TestSettleStatus(t *testing.T) {
	cases := []struct {
		name              string
		completed, failed int
		strict            bool
		want              vo.BatchStatus
		done              bool
	}{
		{"still running", 1, 1, false, "", false},
		{"all completed", 3, 0, false, vo.BatchStatusCompleted, true},
		{"partial failure tolerated", 2, 1, false, vo.BatchStatusCompleted, true},
		{"partial failure strict", 2, 1, true, vo.BatchStatusFailed, true},
		{"all failed", 0, 3, false, vo.BatchStatusFailed, true},
		{"all completed strict", 3, 0, true, vo.BatchStatusCompleted, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, done := SettleStatus(tc.completed, tc.failed, 3, tc.strict)
			assert.Equal(t, tc.done, done)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestBatchAndItemTransitions(t *testing.T) {
	assert.NoError(t, CancelBatch(nowForTest()).Validate())
	assert.NoError(t, SettleBatch(vo.BatchStatusCompleted, nowForTest()).Validate())
	assert.True(t, errors.Is(ResolveItem(false, "").Validate(), errno.ErrInvalidParam))
	assert.NoError(t, ResolveItem(true, "").Validate())
	assert.NoError(t, CancelItem().Validate())
	assert.Equal(t, vo.ItemStatusFailed, CancelItem().To)
}
