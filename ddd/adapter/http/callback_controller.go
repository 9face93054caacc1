package http

import (
	"sync"

	"github.com/gin-gonic/gin"

	"videogen-service/ddd/application/app"
	"videogen-service/pkg/assert"
	"videogen-service/pkg/errno"
	"videogen-service/pkg/logger"
	"videogen-service/pkg/manager"
	"videogen-service/pkg/restapi"
)

// 回调体上限
const maxCallbackBody = 1 << 20

var (
	callbackControllerOnce      sync.Once
	singletonCallbackController CallbackController
)

type CallbackControllerPlugin struct{}

func (p *CallbackControllerPlugin) Name() string {
	return "callbackControllerPlugin"
}

func (p *CallbackControllerPlugin) MustCreateController() manager.Controller {
	assert.NotCircular()
	callbackControllerOnce.Do(func() {
		singletonCallbackController = NewCallbackController(statusApp())
	})
	assert.NotNil(singletonCallbackController)
	return singletonCallbackController
}

// CallbackController 外部服务回调，不经过用户身份校验
type CallbackController interface {
	manager.Controller
	manager.PublicController
}

type callbackControllerImpl struct {
	statusApp app.StatusApp
}

func NewCallbackController(statusApp app.StatusApp) CallbackController {
	return &callbackControllerImpl{statusApp: statusApp}
}

func (c *callbackControllerImpl) RegisterRoutes(*gin.RouterGroup) {}

func (c *callbackControllerImpl) RegisterPublicRoutes(group *gin.RouterGroup) {
	callbacks := group.Group("/callbacks")
	callbacks.POST("/generation/:provider", c.GenerationCallback)
	callbacks.POST("/publish", c.PublishCallback)
}

func (c *callbackControllerImpl) GenerationCallback(ctx *gin.Context) {
	payload, ok := readCallback(ctx)
	if !ok {
		return
	}
	provider := ctx.Param("provider")
	ack, err := c.statusApp.HandleGenerationCallback(ctx.Request.Context(), provider, payload)
	if err != nil {
		logger.Warnf("Generation callback rejected provider=%s error=%v", provider, err)
		restapi.Failed(ctx, err)
		return
	}
	restapi.Success(ctx, ack)
}

func (c *callbackControllerImpl) PublishCallback(ctx *gin.Context) {
	payload, ok := readCallback(ctx)
	if !ok {
		return
	}
	ack, err := c.statusApp.HandlePublishCallback(ctx.Request.Context(), payload)
	if err != nil {
		logger.Warnf("Publish callback rejected error=%v", err)
		restapi.Failed(ctx, err)
		return
	}
	restapi.Success(ctx, ack)
}

func readCallback(ctx *gin.Context) ([]byte, bool) {
	if ctx.Request.ContentLength > maxCallbackBody {
		restapi.Failed(ctx, errno.Errorf(errno.ErrInvalidParam, "callback body too large"))
		return nil, false
	}
	payload, err := ctx.GetRawData()
	if err != nil {
		restapi.Failed(ctx, errno.NewBizError(errno.ErrInvalidParam, err))
		return nil, false
	}
	if len(payload) == 0 {
		restapi.Failed(ctx, errno.Errorf(errno.ErrInvalidParam, "empty callback body"))
		return nil, false
	}
	return payload, true
}
