package storage

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"videogen-service/ddd/domain/entity"
	"videogen-service/ddd/domain/vo"
)

type fakePutter struct {
	bucket, key string
	body        string
	opts        minio.PutObjectOptions
	err         error
}

func (f *fakePutter) PutObject(_ context.Context, bucket, key string, r io.Reader, _ int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	if f.err != nil {
		return minio.UploadInfo{}, f.err
	}
	b, _ := io.ReadAll(r)
	f.bucket, f.key, f.body, f.opts = bucket, key, string(b), opts
	return minio.UploadInfo{Bucket: bucket, Key: key, Size: int64(len(b))}, nil
}

func settledBatch() *entity.BatchJob {
	items := []*entity.BatchItem{
		entity.RestoreBatchItem(entity.BatchItemAttrs{ItemUUID: "i0", BatchUUID: "b1", Index: 0, Status: vo.ItemStatusCompleted, VideoUUID: "v0"}),
		entity.RestoreBatchItem(entity.BatchItemAttrs{ItemUUID: "i1", BatchUUID: "b1", Index: 1, Status: vo.ItemStatusFailed, VideoUUID: "v1", ErrorMessage: "bad, prompt"}),
	}
	return entity.RestoreBatchJob(entity.BatchJobAttrs{
		BatchUUID:      "b1",
		UserUUID:       "u1",
		Provider:       vo.ProviderAvatar,
		Status:         vo.BatchStatusCompleted,
		TotalCount:     2,
		CompletedCount: 1,
		FailedCount:    1,
		Items:          items,
	})
}

func TestMinioReportStoreArchive(t *testing.T) {
	putter := &fakePutter{}
	store := NewMinioReportStore(putter, "reports", "batch-reports")

	key, err := store.Archive(context.Background(), settledBatch())
	require.NoError(t, err)
	assert.Equal(t, "batch-reports/u1/b1.csv", key)
	assert.Equal(t, "reports", putter.bucket)
	assert.Equal(t, "text/csv", putter.opts.ContentType)
	assert.Equal(t, "completed", putter.opts.UserMetadata["batch-status"])

	rows, err := csv.NewReader(strings.NewReader(putter.body)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, reportHeader, rows[0])
	assert.Equal(t, []string{"0", "i0", "completed", "v0", ""}, rows[1])
	assert.Equal(t, []string{"1", "i1", "failed", "v1", "bad, prompt"}, rows[2])
}

func TestMinioReportStoreArchiveError(t *testing.T) {
	store := NewMinioReportStore(&fakePutter{err: errors.New("bucket gone")}, "reports", "p")
	_, err := store.Archive(context.Background(), settledBatch())
	assert.ErrorContains(t, err, "bucket gone")
}
