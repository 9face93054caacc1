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
	videoControllerOnce      sync.Once
	singletonVideoController VideoController
)

type VideoControllerPlugin struct{}

func (p *VideoControllerPlugin) Name() string {
	return "videoControllerPlugin"
}

func (p *VideoControllerPlugin) MustCreateController() manager.Controller {
	assert.NotCircular()
	videoControllerOnce.Do(func() {
		singletonVideoController = NewVideoController(videoApp(), postApp(), statusApp())
	})
	assert.NotNil(singletonVideoController)
	return singletonVideoController
}

// VideoController 单条视频的创建、派发、取消、发布与状态查询
type VideoController interface {
	manager.Controller
}

type videoControllerImpl struct {
	videoApp  app.VideoApp
	postApp   app.PostApp
	statusApp app.StatusApp
}

func NewVideoController(videoApp app.VideoApp, postApp app.PostApp, statusApp app.StatusApp) VideoController {
	return &videoControllerImpl{videoApp: videoApp, postApp: postApp, statusApp: statusApp}
}

func (c *videoControllerImpl) RegisterRoutes(group *gin.RouterGroup) {
	videos := group.Group("/videos")
	videos.POST("", c.CreateVideo)
	videos.GET("/:video_uuid", c.GetVideo)
	videos.POST("/:video_uuid/generate", c.GenerateVideo)
	videos.GET("/:video_uuid/status", c.GetVideoStatus)
	videos.POST("/:video_uuid/cancel", c.CancelVideo)
	videos.POST("/:video_uuid/publish", c.PublishVideo)
}

func (c *videoControllerImpl) CreateVideo(ctx *gin.Context) {
	var req cqe.CreateVideoReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		restapi.Failed(ctx, errno.NewBizError(errno.ErrInvalidParam, err))
		return
	}
	req.UserUUID = middleware.RequesterUUID(ctx)
	resp, err := c.videoApp.CreateVideo(ctx.Request.Context(), &req)
	if err != nil {
		restapi.Failed(ctx, err)
		return
	}
	restapi.Created(ctx, resp)
}

func (c *videoControllerImpl) GetVideo(ctx *gin.Context) {
	resp, err := c.videoApp.GetVideo(ctx.Request.Context(), videoAction(ctx))
	if err != nil {
		restapi.Failed(ctx, err)
		return
	}
	restapi.Success(ctx, resp)
}

func (c *videoControllerImpl) GenerateVideo(ctx *gin.Context) {
	resp, err := c.videoApp.GenerateVideo(ctx.Request.Context(), videoAction(ctx))
	if err != nil {
		restapi.Failed(ctx, err)
		return
	}
	restapi.Success(ctx, resp)
}

func (c *videoControllerImpl) GetVideoStatus(ctx *gin.Context) {
	resp, err := c.statusApp.GetVideoStatus(ctx.Request.Context(), videoAction(ctx))
	if err != nil {
		restapi.Failed(ctx, err)
		return
	}
	restapi.Success(ctx, resp)
}

func (c *videoControllerImpl) CancelVideo(ctx *gin.Context) {
	resp, err := c.videoApp.CancelVideo(ctx.Request.Context(), videoAction(ctx))
	if err != nil {
		restapi.Failed(ctx, err)
		return
	}
	restapi.Success(ctx, resp)
}

func (c *videoControllerImpl) PublishVideo(ctx *gin.Context) {
	var req cqe.PublishVideoReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		restapi.Failed(ctx, errno.NewBizError(errno.ErrInvalidParam, err))
		return
	}
	req.UserUUID = middleware.RequesterUUID(ctx)
	req.VideoUUID = ctx.Param("video_uuid")
	resp, err := c.postApp.PublishVideo(ctx.Request.Context(), &req)
	if err != nil {
		restapi.Failed(ctx, err)
		return
	}
	restapi.Created(ctx, resp)
}

func videoAction(ctx *gin.Context) *cqe.VideoActionReq {
	return &cqe.VideoActionReq{
		UserUUID:  middleware.RequesterUUID(ctx),
		VideoUUID: ctx.Param("video_uuid"),
	}
}
