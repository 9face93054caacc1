package http

import (
	"sync"

	"github.com/gin-gonic/gin"

	"videogen-service/ddd/application/app"
	"videogen-service/ddd/application/cqe"
	"videogen-service/pkg/assert"
	"videogen-service/pkg/manager"
	"videogen-service/pkg/middleware"
	"videogen-service/pkg/restapi"
)

var (
	postControllerOnce      sync.Once
	singletonPostController PostController
)

type PostControllerPlugin struct{}

func (p *PostControllerPlugin) Name() string {
	return "postControllerPlugin"
}

func (p *PostControllerPlugin) MustCreateController() manager.Controller {
	assert.NotCircular()
	postControllerOnce.Do(func() {
		singletonPostController = NewPostController(statusApp())
	})
	assert.NotNil(singletonPostController)
	return singletonPostController
}

// PostController 发布记录查询，发布动作挂在视频路由下
type PostController interface {
	manager.Controller
}

type postControllerImpl struct {
	statusApp app.StatusApp
}

func NewPostController(statusApp app.StatusApp) PostController {
	return &postControllerImpl{statusApp: statusApp}
}

func (c *postControllerImpl) RegisterRoutes(group *gin.RouterGroup) {
	group.GET("/posts/:post_uuid/status", c.GetPostStatus)
}

func (c *postControllerImpl) GetPostStatus(ctx *gin.Context) {
	resp, err := c.statusApp.GetPostStatus(ctx.Request.Context(), &cqe.PostActionReq{
		UserUUID: middleware.RequesterUUID(ctx),
		PostUUID: ctx.Param("post_uuid"),
	})
	if err != nil {
		restapi.Failed(ctx, err)
		return
	}
	restapi.Success(ctx, resp)
}
