package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"videogen-service/ddd/domain/vo"
	"videogen-service/pkg/errno"
)

// BatchJob 批量任务，计数只通过增量维护
type BatchJob struct {
	batchUUID      string
	userUUID       string
	provider       vo.ProviderType
	status         vo.BatchStatus
	totalCount     int
	completedCount int
	failedCount    int
	config         vo.ProviderConfig
	items          []*BatchItem
	createdAt      time.Time
	updatedAt      time.Time
	startedAt      *time.Time
	completedAt    *time.Time
}

// NewBatchJob 创建批量任务，子项按输入顺序编号
func NewBatchJob(userUUID string, provider vo.ProviderType, cfg vo.ProviderConfig, inputs []vo.GenerationParams) (*BatchJob, error) {
	if strings.TrimSpace(userUUID) == "" {
		return nil, errno.ErrUserUUIDRequired
	}
	if !provider.IsValid() {
		return nil, errno.Errorf(errno.ErrUnknownProvider, "provider=%s", provider)
	}
	if len(inputs) == 0 {
		return nil, errno.ErrEmptyBatch
	}

	now := time.Now()
	batchUUID := uuid.NewString()
	items := make([]*BatchItem, 0, len(inputs))
	for i, in := range inputs {
		if err := in.Merge(cfg).Validate(provider); err != nil {
			return nil, errno.Errorf(errno.ErrInvalidParam, "item %d: %v", i, err)
		}
		items = append(items, &BatchItem{
			itemUUID:  uuid.NewString(),
			batchUUID: batchUUID,
			index:     i,
			status:    vo.ItemStatusPending,
			params:    in,
			createdAt: now,
			updatedAt: now,
		})
	}

	return &BatchJob{
		batchUUID:  batchUUID,
		userUUID:   userUUID,
		provider:   provider,
		status:     vo.BatchStatusPending,
		totalCount: len(items),
		config:     cfg,
		items:      items,
		createdAt:  now,
		updatedAt:  now,
	}, nil
}

// BatchJobAttrs 从存储恢复实体时使用
type BatchJobAttrs struct {
	BatchUUID      string
	UserUUID       string
	Provider       vo.ProviderType
	Status         vo.BatchStatus
	TotalCount     int
	CompletedCount int
	FailedCount    int
	Config         vo.ProviderConfig
	Items          []*BatchItem
	CreatedAt      time.Time
	UpdatedAt      time.Time
	StartedAt      *time.Time
	CompletedAt    *time.Time
}

// RestoreBatchJob 按存储数据重建实体
func RestoreBatchJob(a BatchJobAttrs) *BatchJob {
	return &BatchJob{
		batchUUID:      a.BatchUUID,
		userUUID:       a.UserUUID,
		provider:       a.Provider,
		status:         a.Status,
		totalCount:     a.TotalCount,
		completedCount: a.CompletedCount,
		failedCount:    a.FailedCount,
		config:         a.Config,
		items:          a.Items,
		createdAt:      a.CreatedAt,
		updatedAt:      a.UpdatedAt,
		startedAt:      a.StartedAt,
		completedAt:    a.CompletedAt,
	}
}

func (b *BatchJob) BatchUUID() string         { return b.batchUUID }
func (b *BatchJob) UserUUID() string          { return b.userUUID }
func (b *BatchJob) Provider() vo.ProviderType { return b.provider }
func (b *BatchJob) Status() vo.BatchStatus    { return b.status }
func (b *BatchJob) TotalCount() int           { return b.totalCount }
func (b *BatchJob) CompletedCount() int       { return b.completedCount }
func (b *BatchJob) FailedCount() int          { return b.failedCount }
func (b *BatchJob) Config() vo.ProviderConfig { return b.config }
func (b *BatchJob) Items() []*BatchItem       { return b.items }
func (b *BatchJob) CreatedAt() time.Time      { return b.createdAt }
func (b *BatchJob) UpdatedAt() time.Time      { return b.updatedAt }
func (b *BatchJob) StartedAt() *time.Time     { return b.startedAt }
func (b *BatchJob) CompletedAt() *time.Time   { return b.completedAt }

// SetItems 挂载子项，按 index 排好序后传入
func (b *BatchJob) SetItems(items []*BatchItem) { b.items = items }

// ResolvedCount 已进入终态的子项数
func (b *BatchJob) ResolvedCount() int { return b.completedCount + b.failedCount }

// Progress floor(100 * resolved / total)
func (b *BatchJob) Progress() int {
	return BatchProgress(b.completedCount, b.failedCount, b.totalCount)
}

// ShouldContinuePolling 批量任务未结束时继续轮询
func (b *BatchJob) ShouldContinuePolling() bool { return !b.status.IsTerminal() }

// BatchProgress 批量进度计算
func BatchProgress(completed, failed, total int) int {
	if total <= 0 {
		return 0
	}
	resolved := completed + failed
	if resolved > total {
		resolved = total
	}
	return 100 * resolved / total
}

// SettleStatus 根据计数判断批量任务的终态。
// 子项未全部结束时返回 false；全部失败为 failed；strict 模式下任一失败即 failed。
func SettleStatus(completed, failed, total int, strict bool) (vo.BatchStatus, bool) {
	if total <= 0 || completed+failed < total {
		return "", false
	}
	if failed >= total {
		return vo.BatchStatusFailed, true
	}
	if strict && failed > 0 {
		return vo.BatchStatusFailed, true
	}
	return vo.BatchStatusCompleted, true
}

// BatchTransition 批量任务状态迁移
type BatchTransition struct {
	From        []vo.BatchStatus
	To          vo.BatchStatus
	StartedAt   *time.Time
	CompletedAt *time.Time
}

// Validate 检查迁移是否在状态表内
func (t BatchTransition) Validate() error {
	if len(t.From) == 0 {
		return errno.Errorf(errno.ErrInvalidTransition, "no source status for %s", t.To)
	}
	for _, s := range t.From {
		if !s.CanTransitionTo(t.To) {
			return errno.Errorf(errno.ErrInvalidTransition, "%s -> %s is not allowed", s, t.To)
		}
	}
	return nil
}

// StartBatch 首个子项派发
func StartBatch(at time.Time) BatchTransition {
	return BatchTransition{From: []vo.BatchStatus{vo.BatchStatusPending}, To: vo.BatchStatusProcessing, StartedAt: &at}
}

// SettleBatch 所有子项结束
func SettleBatch(to vo.BatchStatus, at time.Time) BatchTransition {
	return BatchTransition{From: []vo.BatchStatus{vo.BatchStatusProcessing}, To: to, CompletedAt: &at}
}

// CancelBatch 用户取消批量任务
func CancelBatch(at time.Time) BatchTransition {
	return BatchTransition{
		From:        []vo.BatchStatus{vo.BatchStatusPending, vo.BatchStatusProcessing},
		To:          vo.BatchStatusCancelled,
		CompletedAt: &at,
	}
}
