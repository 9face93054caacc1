package service

import (
	"context"
	"time"

	"videogen-service/ddd/domain/entity"
	"videogen-service/ddd/domain/gateway"
	"videogen-service/ddd/domain/repo"
	"videogen-service/ddd/domain/vo"
	"videogen-service/pkg/errno"
	"videogen-service/pkg/logger"
)

// BatchOrchestrator 批量任务编排：创建、按并发上限派发、汇总子项结果
type BatchOrchestrator interface {
	CreateBatch(ctx context.Context, userUUID string, provider vo.ProviderType, cfg vo.ProviderConfig, inputs []vo.GenerationParams) (*entity.BatchJob, error)
	// DispatchNext 在并发上限内派发 pending 子项，返回本次成功派发的数量
	DispatchNext(ctx context.Context, userUUID, batchUUID string) (int, error)
	// OnItemResolved 子项结束：计数递增、重新评估批量状态并补位派发
	OnItemResolved(ctx context.Context, itemUUID string, success bool, reason string) (*entity.BatchJob, error)
	// OnVideoResolved 视频进入终态后同步其所属子项，非批量视频直接忽略
	OnVideoResolved(ctx context.Context, video *entity.Video) error
	// CancelBatch 取消批量任务及其未结束的子项
	CancelBatch(ctx context.Context, userUUID, batchUUID string) (*entity.BatchJob, error)
}

// OrchestratorOptions 编排参数
type OrchestratorOptions struct {
	// Concurrency 每种服务类型同时处理中的子项上限
	Concurrency func(provider vo.ProviderType) int
	// StrictCompletion 任一子项失败即判定批量失败
	StrictCompletion bool
	MaxItems         int
}

type batchOrchestratorImpl struct {
	batches    repo.BatchRepository
	videos     repo.VideoRepository
	generation GenerationService
	locker     gateway.DispatchLocker
	reports    gateway.BatchReportStore
	opts       OrchestratorOptions
	recorder   recorder
}

// NewBatchOrchestrator 创建批量编排服务，locker 为空时使用进程内锁
func NewBatchOrchestrator(batches repo.BatchRepository, videos repo.VideoRepository, generation GenerationService,
	locker gateway.DispatchLocker, reports gateway.BatchReportStore, events gateway.EventPublisher, opts OrchestratorOptions) BatchOrchestrator {
	if locker == nil {
		locker = NewLocalLocker()
	}
	if opts.Concurrency == nil {
		opts.Concurrency = func(vo.ProviderType) int { return 1 }
	}
	return &batchOrchestratorImpl{
		batches:    batches,
		videos:     videos,
		generation: generation,
		locker:     locker,
		reports:    reports,
		opts:       opts,
		recorder:   recorder{events: events},
	}
}

func (o *batchOrchestratorImpl) CreateBatch(ctx context.Context, userUUID string, provider vo.ProviderType,
	cfg vo.ProviderConfig, inputs []vo.GenerationParams) (*entity.BatchJob, error) {
	if o.opts.MaxItems > 0 && len(inputs) > o.opts.MaxItems {
		return nil, errno.Errorf(errno.ErrBatchTooLarge, "%d items, max %d", len(inputs), o.opts.MaxItems)
	}
	batch, err := entity.NewBatchJob(userUUID, provider, cfg, inputs)
	if err != nil {
		return nil, err
	}
	if err := o.batches.CreateBatch(ctx, batch); err != nil {
		return nil, err
	}
	o.recorder.batch(ctx, batch)
	logger.Infof("Batch created batch_uuid=%s provider=%s items=%d", batch.BatchUUID(), provider, batch.TotalCount())
	return batch, nil
}

type claimedItem struct {
	item  *entity.BatchItem
	video *entity.Video
}

func (o *batchOrchestratorImpl) DispatchNext(ctx context.Context, userUUID, batchUUID string) (int, error) {
	dispatched := 0
	for {
		claimed, err := o.claim(ctx, userUUID, batchUUID)
		if err != nil {
			return dispatched, err
		}
		if len(claimed) == 0 {
			return dispatched, nil
		}

		// 提交在锁外进行；同步失败的子项立即结束并释放名额，继续下一轮补位
		freed := 0
		for _, c := range claimed {
			video, err := o.generation.Dispatch(ctx, c.video)
			if err != nil {
				if _, rerr := o.settleItem(ctx, c.item.ItemUUID(), entity.ResolveItem(false, failureReason(err))); rerr != nil && !isInvalidTransition(rerr) {
					logger.Errorf("Resolve item after dispatch failure error item_uuid=%s error=%v", c.item.ItemUUID(), rerr)
				}
				freed++
				continue
			}
			dispatched++
			o.cancelIfAbandoned(ctx, c.item.ItemUUID(), video)
		}
		if freed == 0 {
			return dispatched, nil
		}
	}
}

// claim 在批量锁内把可用名额内的 pending 子项置为 processing 并创建草稿视频
func (o *batchOrchestratorImpl) claim(ctx context.Context, userUUID, batchUUID string) ([]claimedItem, error) {
	unlock, err := o.locker.Lock(ctx, "batch:dispatch:"+batchUUID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	batch, err := o.batches.GetBatch(ctx, userUUID, batchUUID)
	if err != nil {
		return nil, err
	}
	if batch.Status().IsTerminal() {
		return nil, nil
	}

	slots := o.opts.Concurrency(batch.Provider())
	for _, item := range batch.Items() {
		if item.Status() == vo.ItemStatusProcessing {
			slots--
		}
	}

	// 适配器缺失时不创建视频，子项直接失败
	unsupported := o.generation.Supports(batch.Provider())
	started := batch.Status() != vo.BatchStatusPending
	var claimed []claimedItem
	for _, item := range batch.Items() {
		if slots <= 0 {
			break
		}
		if item.Status() != vo.ItemStatusPending {
			continue
		}
		if err := o.batches.StartItem(ctx, item.ItemUUID()); err != nil {
			if isInvalidTransition(err) {
				continue
			}
			return claimed, err
		}
		if !started {
			err := o.batches.TransitionBatch(ctx, userUUID, batchUUID, entity.StartBatch(time.Now()))
			switch {
			case err == nil:
				o.recorder.publish(ctx, gateway.LifecycleEvent{
					Entity:     "batch",
					EntityUUID: batchUUID,
					UserUUID:   userUUID,
					Status:     vo.BatchStatusProcessing.String(),
					OccurredAt: time.Now(),
				})
			case !isInvalidTransition(err):
				return claimed, err
			}
			started = true
		}

		if unsupported != nil {
			if _, rerr := o.settleItem(ctx, item.ItemUUID(), entity.ResolveItem(false, failureReason(unsupported))); rerr != nil && !isInvalidTransition(rerr) {
				return claimed, rerr
			}
			continue
		}
		video, err := o.newItemVideo(ctx, batch, item)
		if err != nil {
			logger.Warnf("Create video for batch item failed item_uuid=%s error=%v", item.ItemUUID(), err)
			if _, rerr := o.settleItem(ctx, item.ItemUUID(), entity.ResolveItem(false, err.Error())); rerr != nil && !isInvalidTransition(rerr) {
				return claimed, rerr
			}
			continue
		}
		claimed = append(claimed, claimedItem{item: item, video: video})
		slots--
	}
	return claimed, nil
}

// cancelIfAbandoned 提交期间批量被取消时撤回刚派发的视频
func (o *batchOrchestratorImpl) cancelIfAbandoned(ctx context.Context, itemUUID string, video *entity.Video) {
	item, err := o.batches.GetItem(ctx, itemUUID)
	if err != nil || !item.Status().IsTerminal() {
		return
	}
	if v, err := o.videos.TransitionVideo(ctx, video.UserUUID(), video.VideoUUID(), entity.CancelGeneration()); err == nil {
		o.recorder.video(ctx, v)
		logger.Infof("Abandoned batch video cancelled video_uuid=%s item_uuid=%s", video.VideoUUID(), itemUUID)
	}
}

func (o *batchOrchestratorImpl) newItemVideo(ctx context.Context, batch *entity.BatchJob, item *entity.BatchItem) (*entity.Video, error) {
	video, err := entity.NewVideo(batch.UserUUID(), batch.Provider(), item.Params().Merge(batch.Config()), item.ItemUUID())
	if err != nil {
		return nil, err
	}
	if err := o.videos.CreateVideo(ctx, video); err != nil {
		return nil, err
	}
	if err := o.batches.LinkItemVideo(ctx, item.ItemUUID(), video.VideoUUID()); err != nil {
		return nil, err
	}
	return video, nil
}

func (o *batchOrchestratorImpl) OnItemResolved(ctx context.Context, itemUUID string, success bool, reason string) (*entity.BatchJob, error) {
	batch, err := o.settleItem(ctx, itemUUID, entity.ResolveItem(success, reason))
	if err != nil {
		return nil, err
	}
	if !batch.Status().IsTerminal() {
		if _, err := o.DispatchNext(ctx, batch.UserUUID(), batch.BatchUUID()); err != nil {
			logger.Warnf("Refill dispatch failed batch_uuid=%s error=%v", batch.BatchUUID(), err)
		}
	}
	return batch, nil
}

func (o *batchOrchestratorImpl) OnVideoResolved(ctx context.Context, video *entity.Video) error {
	if video == nil || video.BatchItemUUID() == "" {
		return nil
	}
	var err error
	switch video.Status() {
	case vo.VideoStatusReady:
		_, err = o.OnItemResolved(ctx, video.BatchItemUUID(), true, "")
	case vo.VideoStatusFailed:
		_, err = o.OnItemResolved(ctx, video.BatchItemUUID(), false, video.ErrorMessage())
	case vo.VideoStatusCancelled:
		_, err = o.OnItemResolved(ctx, video.BatchItemUUID(), false, "cancelled")
	default:
		return nil
	}
	if isInvalidTransition(err) {
		// 子项已经结束（例如批量取消先到）
		return nil
	}
	return err
}

// settleItem 子项进入终态、计数递增，并在全部结束时推进批量状态
func (o *batchOrchestratorImpl) settleItem(ctx context.Context, itemUUID string, t entity.ItemTransition) (*entity.BatchJob, error) {
	batch, err := o.batches.ResolveItem(ctx, itemUUID, t)
	if err != nil {
		o.recorder.rejected("batch_item", t.To.String(), err)
		return nil, err
	}
	logger.Infof("Batch item resolved item_uuid=%s status=%s batch_uuid=%s completed=%d failed=%d total=%d",
		itemUUID, t.To, batch.BatchUUID(), batch.CompletedCount(), batch.FailedCount(), batch.TotalCount())

	target, done := entity.SettleStatus(batch.CompletedCount(), batch.FailedCount(), batch.TotalCount(), o.opts.StrictCompletion)
	if !done || batch.Status().IsTerminal() {
		return batch, nil
	}
	err = o.batches.TransitionBatch(ctx, batch.UserUUID(), batch.BatchUUID(), entity.SettleBatch(target, time.Now()))
	if err != nil {
		if isInvalidTransition(err) {
			// 另一个并发结束的子项已经推进了批量状态
			return o.batches.GetBatch(ctx, batch.UserUUID(), batch.BatchUUID())
		}
		return nil, err
	}
	settled, err := o.batches.GetBatch(ctx, batch.UserUUID(), batch.BatchUUID())
	if err != nil {
		return nil, err
	}
	o.recorder.batch(ctx, settled)
	o.archive(ctx, settled)
	logger.Infof("Batch settled batch_uuid=%s status=%s", settled.BatchUUID(), settled.Status())
	return settled, nil
}

func (o *batchOrchestratorImpl) CancelBatch(ctx context.Context, userUUID, batchUUID string) (*entity.BatchJob, error) {
	batch, err := o.batches.GetBatch(ctx, userUUID, batchUUID)
	if err != nil {
		return nil, err
	}
	if batch.Status().IsTerminal() {
		return nil, errno.Errorf(errno.ErrInvalidState, "batch is %s", batch.Status())
	}
	if err := o.batches.TransitionBatch(ctx, userUUID, batchUUID, entity.CancelBatch(time.Now())); err != nil {
		return nil, err
	}

	// 批量状态已终结，之后的补位派发不会再领取子项
	for _, item := range batch.Items() {
		if item.Status().IsTerminal() {
			continue
		}
		if item.VideoUUID() != "" {
			if v, err := o.videos.TransitionVideo(ctx, userUUID, item.VideoUUID(), entity.CancelGeneration()); err == nil {
				o.recorder.video(ctx, v)
			} else if !isInvalidTransition(err) {
				logger.Warnf("Cancel batch video failed video_uuid=%s error=%v", item.VideoUUID(), err)
			}
		}
		if _, err := o.batches.ResolveItem(ctx, item.ItemUUID(), entity.CancelItem()); err != nil && !isInvalidTransition(err) {
			logger.Warnf("Cancel batch item failed item_uuid=%s error=%v", item.ItemUUID(), err)
		}
	}

	cancelled, err := o.batches.GetBatch(ctx, userUUID, batchUUID)
	if err != nil {
		return nil, err
	}
	o.recorder.batch(ctx, cancelled)
	o.archive(ctx, cancelled)
	logger.Infof("Batch cancelled batch_uuid=%s completed=%d failed=%d", batchUUID, cancelled.CompletedCount(), cancelled.FailedCount())
	return cancelled, nil
}

func (o *batchOrchestratorImpl) archive(ctx context.Context, batch *entity.BatchJob) {
	if o.reports == nil {
		return
	}
	key, err := o.reports.Archive(ctx, batch)
	if err != nil {
		logger.Warnf("Batch report archive failed batch_uuid=%s error=%v", batch.BatchUUID(), err)
		return
	}
	logger.Infof("Batch report archived batch_uuid=%s key=%s", batch.BatchUUID(), key)
}
