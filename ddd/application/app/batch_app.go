package app

import (
	"context"
	"sync"

	"videogen-service/ddd/application/cqe"
	"videogen-service/ddd/application/dto"
	"videogen-service/ddd/domain/repo"
	"videogen-service/ddd/domain/service"
	"videogen-service/pkg/assert"
	"videogen-service/pkg/logger"
)

var (
	singleBatchApp BatchApp
	onceBatchApp   sync.Once
)

// BatchApp 批量任务的创建、补位派发、查询与取消
type BatchApp interface {
	// CreateBatch 创建批量任务并派发第一波子项
	CreateBatch(ctx context.Context, req *cqe.CreateBatchReq) (*dto.BatchDto, error)
	DispatchNext(ctx context.Context, req *cqe.BatchActionReq) (*dto.BatchDto, error)
	CancelBatch(ctx context.Context, req *cqe.BatchActionReq) (*dto.BatchDto, error)
	ListBatches(ctx context.Context, req *cqe.ListBatchesReq) (*dto.BatchListDto, error)
}

type batchAppImpl struct {
	batches      repo.BatchRepository
	orchestrator service.BatchOrchestrator
	cancellation service.CancellationCoordinator
}

func DefaultBatchApp() BatchApp {
	assert.NotCircular()
	onceBatchApp.Do(func() {
		e := DefaultEngine()
		singleBatchApp = NewBatchAppWith(e.Batches, e.Orchestrator, e.Cancellation)
	})
	assert.NotNil(singleBatchApp)
	return singleBatchApp
}

func NewBatchAppWith(batches repo.BatchRepository, orchestrator service.BatchOrchestrator,
	cancellation service.CancellationCoordinator) BatchApp {
	return &batchAppImpl{
		batches:      batches,
		orchestrator: orchestrator,
		cancellation: cancellation,
	}
}

func (a *batchAppImpl) CreateBatch(ctx context.Context, req *cqe.CreateBatchReq) (*dto.BatchDto, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	batch, err := a.orchestrator.CreateBatch(ctx, req.UserUUID, req.ProviderType(), req.Config, req.Items)
	if err != nil {
		return nil, err
	}

	// 首波派发失败不影响创建结果，子项保持 pending，可通过 dispatch 接口重试
	dispatched, err := a.orchestrator.DispatchNext(ctx, req.UserUUID, batch.BatchUUID())
	if err != nil {
		logger.Warnf("First wave dispatch failed batch_uuid=%s error=%v", batch.BatchUUID(), err)
	}
	return a.snapshot(ctx, req.UserUUID, batch.BatchUUID(), dispatched)
}

func (a *batchAppImpl) DispatchNext(ctx context.Context, req *cqe.BatchActionReq) (*dto.BatchDto, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	dispatched, err := a.orchestrator.DispatchNext(ctx, req.UserUUID, req.BatchUUID)
	if err != nil {
		return nil, err
	}
	return a.snapshot(ctx, req.UserUUID, req.BatchUUID, dispatched)
}

func (a *batchAppImpl) CancelBatch(ctx context.Context, req *cqe.BatchActionReq) (*dto.BatchDto, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	batch, err := a.cancellation.CancelBatch(ctx, req.UserUUID, req.BatchUUID)
	if err != nil {
		return nil, err
	}
	return dto.NewBatchDto(batch), nil
}

func (a *batchAppImpl) ListBatches(ctx context.Context, req *cqe.ListBatchesReq) (*dto.BatchListDto, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	batches, total, err := a.batches.ListBatches(ctx, req.UserUUID, req.Offset(), req.PageSize)
	if err != nil {
		return nil, err
	}
	return dto.NewBatchListDto(batches, total, req.Page, req.PageSize), nil
}

func (a *batchAppImpl) snapshot(ctx context.Context, userUUID, batchUUID string, dispatched int) (*dto.BatchDto, error) {
	batch, err := a.batches.GetBatch(ctx, userUUID, batchUUID)
	if err != nil {
		return nil, err
	}
	d := dto.NewBatchDto(batch)
	d.Dispatched = dispatched
	return d, nil
}
