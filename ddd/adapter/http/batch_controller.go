package http

import (
	"sync"

	"github.com/gin-gonic/gin"

	"videogen-service/ddd/application/app"
	"videogen-service/ddd/application/cqe"
	"videogen-service/pkg/assert"
	"videogen-service/pkg/errno"
	"videogen-service/pkg/manager"
	"videogen-service/pkg/middleware"
	"videogen-service/pkg/restapi"
)

var (
	batchControllerOnce      sync.Once
	singletonBatchController BatchController
)

type BatchControllerPlugin struct{}

func (p *BatchControllerPlugin) Name() string {
	return "batchControllerPlugin"
}

func (p *BatchControllerPlugin) MustCreateController() manager.Controller {
	assert.NotCircular()
	batchControllerOnce.Do(func() {
		singletonBatchController = NewBatchController(batchApp(), statusApp())
	})
	assert.NotNil(singletonBatchController)
	return singletonBatchController
}

// BatchController 批量任务接口
type BatchController interface {
	manager.Controller
}

type batchControllerImpl struct {
	batchApp  app.BatchApp
	statusApp app.StatusApp
}

func NewBatchController(batchApp app.BatchApp, statusApp app.StatusApp) BatchController {
	return &batchControllerImpl{batchApp: batchApp, statusApp: statusApp}
}

func (c *batchControllerImpl) RegisterRoutes(group *gin.RouterGroup) {
	batches := group.Group("/batches")
	batches.POST("", c.CreateBatch)
	batches.GET("", c.ListBatches)
	batches.GET("/:batch_uuid", c.GetBatch)
	batches.POST("/:batch_uuid/dispatch", c.DispatchNext)
	batches.POST("/:batch_uuid/cancel", c.CancelBatch)
}

func (c *batchControllerImpl) CreateBatch(ctx *gin.Context) {
	var req cqe.CreateBatchReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		restapi.Failed(ctx, errno.NewBizError(errno.ErrInvalidParam, err))
		return
	}
	req.UserUUID = middleware.RequesterUUID(ctx)
	resp, err := c.batchApp.CreateBatch(ctx.Request.Context(), &req)
	if err != nil {
		restapi.Failed(ctx, err)
		return
	}
	restapi.Created(ctx, resp)
}

func (c *batchControllerImpl) ListBatches(ctx *gin.Context) {
	var req cqe.ListBatchesReq
	if err := ctx.ShouldBindQuery(&req); err != nil {
		restapi.Failed(ctx, errno.NewBizError(errno.ErrInvalidParam, err))
		return
	}
	req.UserUUID = middleware.RequesterUUID(ctx)
	resp, err := c.batchApp.ListBatches(ctx.Request.Context(), &req)
	if err != nil {
		restapi.Failed(ctx, err)
		return
	}
	restapi.Success(ctx, resp)
}

func (c *batchControllerImpl) GetBatch(ctx *gin.Context) {
	resp, err := c.statusApp.GetBatchStatus(ctx.Request.Context(), batchAction(ctx))
	if err != nil {
		restapi.Failed(ctx, err)
		return
	}
	restapi.Success(ctx, resp)
}

func (c *batchControllerImpl) DispatchNext(ctx *gin.Context) {
	resp, err := c.batchApp.DispatchNext(ctx.Request.Context(), batchAction(ctx))
	if err != nil {
		restapi.Failed(ctx, err)
		return
	}
	restapi.Success(ctx, resp)
}

func (c *batchControllerImpl) CancelBatch(ctx *gin.Context) {
	resp, err := c.batchApp.CancelBatch(ctx.Request.Context(), batchAction(ctx))
	if err != nil {
		restapi.Failed(ctx, err)
		return
	}
	restapi.Success(ctx, resp)
}

func batchAction(ctx *gin.Context) *cqe.BatchActionReq {
	return &cqe.BatchActionReq{
		UserUUID:  middleware.RequesterUUID(ctx),
		BatchUUID: ctx.Param("batch_uuid"),
	}
}
