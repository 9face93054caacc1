package storage

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"path"
	"strconv"

	"github.com/minio/minio-go/v7"

	"videogen-service/ddd/domain/entity"
	"videogen-service/ddd/domain/gateway"
	"videogen-service/pkg/logger"
)

// ObjectPutter minio.Client 中归档用到的部分
type ObjectPutter interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64,
		opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// MinioReportStore 批量任务结束后把子项结果写成CSV上传到MinIO
type MinioReportStore struct {
	client ObjectPutter
	bucket string
	prefix string
}

var _ gateway.BatchReportStore = (*MinioReportStore)(nil)

func NewMinioReportStore(client ObjectPutter, bucket, prefix string) *MinioReportStore {
	return &MinioReportStore{client: client, bucket: bucket, prefix: prefix}
}

var reportHeader = []string{"item_index", "item_uuid", "status", "video_uuid", "error_message"}

// Archive 报表按子项序号排列，对象键为 <prefix>/<user>/<batch>.csv
func (s *MinioReportStore) Archive(ctx context.Context, batch *entity.BatchJob) (string, error) {
	body, err := RenderReport(batch)
	if err != nil {
		return "", err
	}
	objectKey := path.Join(s.prefix, batch.UserUUID(), batch.BatchUUID()+".csv")
	_, err = s.client.PutObject(ctx, s.bucket, objectKey, bytes.NewReader(body), int64(len(body)), minio.PutObjectOptions{
		ContentType: "text/csv",
		UserMetadata: map[string]string{
			"batch-status": batch.Status().String(),
			"completed":    strconv.Itoa(batch.CompletedCount()),
			"failed":       strconv.Itoa(batch.FailedCount()),
		},
	})
	if err != nil {
		return "", fmt.Errorf("upload batch report to minio failed: %w", err)
	}
	logger.Info("Batch report uploaded", map[string]interface{}{
		"batch_uuid": batch.BatchUUID(),
		"object_key": objectKey,
		"size":       len(body),
	})
	return objectKey, nil
}

// RenderReport 生成CSV报表内容
func RenderReport(batch *entity.BatchJob) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(reportHeader); err != nil {
		return nil, err
	}
	for _, item := range batch.Items() {
		row := []string{
			strconv.Itoa(item.Index()),
			item.ItemUUID(),
			item.Status().String(),
			item.VideoUUID(),
			item.ErrorMessage(),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
