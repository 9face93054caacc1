package manager

import (
	"fmt"
	"sync"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"videogen-service/pkg/config"
	"videogen-service/pkg/logger"
)

// Resource 外部资源（数据库、缓存、消息队列等）
type Resource interface {
	MustOpen()
	Close()
}

// ResourcePlugin 资源插件，在init中注册
type ResourcePlugin interface {
	Name() string
	MustCreateResource() Resource
}

// Component 需要随服务启停的组件
type Component interface {
	Start() error
	Stop() error
	GetName() string
}

// ComponentPlugin 组件插件
type ComponentPlugin interface {
	Name() string
	MustCreateComponent(deps *Dependencies) Component
}

// Controller HTTP控制器，挂载到 /api/v1 路由组
type Controller interface {
	RegisterRoutes(group *gin.RouterGroup)
}

// PublicController 额外注册不经过身份校验的路由，如外部服务回调
type PublicController interface {
	RegisterPublicRoutes(group *gin.RouterGroup)
}

// ControllerPlugin 控制器插件
type ControllerPlugin interface {
	Name() string
	MustCreateController() Controller
}

// Dependencies 依赖注入容器
type Dependencies struct {
	DB     *gorm.DB
	Config *config.Config
	// 应用服务以接口形式传入，避免 pkg 依赖 ddd 包
	VideoAppService  interface{}
	BatchAppService  interface{}
	PostAppService   interface{}
	StatusAppService interface{}
}

type registry struct {
	mu                sync.Mutex
	resourcePlugins   []ResourcePlugin
	componentPlugins  []ComponentPlugin
	controllerPlugins []ControllerPlugin
	resources         []Resource
	components        []Component
	deps              *Dependencies
}

var defaultRegistry = &registry{}

// RegisterResourcePlugin 注册资源插件
func RegisterResourcePlugin(p ResourcePlugin) {
	defaultRegistry.mu.Lock()
	defer defaultRegistry.mu.Unlock()
	defaultRegistry.resourcePlugins = append(defaultRegistry.resourcePlugins, p)
}

// RegisterComponentPlugin 注册组件插件
func RegisterComponentPlugin(p ComponentPlugin) {
	defaultRegistry.mu.Lock()
	defer defaultRegistry.mu.Unlock()
	defaultRegistry.componentPlugins = append(defaultRegistry.componentPlugins, p)
}

// RegisterControllerPlugin 注册控制器插件
func RegisterControllerPlugin(p ControllerPlugin) {
	defaultRegistry.mu.Lock()
	defer defaultRegistry.mu.Unlock()
	defaultRegistry.controllerPlugins = append(defaultRegistry.controllerPlugins, p)
}

// MustInitResources 按注册顺序打开所有资源，失败直接panic
func MustInitResources() {
	defaultRegistry.mu.Lock()
	plugins := append([]ResourcePlugin(nil), defaultRegistry.resourcePlugins...)
	defaultRegistry.mu.Unlock()

	for _, p := range plugins {
		res := p.MustCreateResource()
		res.MustOpen()
		defaultRegistry.mu.Lock()
		defaultRegistry.resources = append(defaultRegistry.resources, res)
		defaultRegistry.mu.Unlock()
		logger.Infof("Resource opened name=%s", p.Name())
	}
}

// CloseResources 逆序关闭资源
func CloseResources() {
	defaultRegistry.mu.Lock()
	defer defaultRegistry.mu.Unlock()
	for i := len(defaultRegistry.resources) - 1; i >= 0; i-- {
		defaultRegistry.resources[i].Close()
	}
	defaultRegistry.resources = nil
}

// MustInitServices 保存依赖，供组件和路由插件使用
func MustInitServices(deps *Dependencies) {
	if deps == nil {
		panic("dependencies must not be nil")
	}
	defaultRegistry.mu.Lock()
	defer defaultRegistry.mu.Unlock()
	defaultRegistry.deps = deps
}

// GetDependencies 返回已初始化的依赖
func GetDependencies() *Dependencies {
	defaultRegistry.mu.Lock()
	defer defaultRegistry.mu.Unlock()
	return defaultRegistry.deps
}

// MustInitComponents 创建并启动所有组件
func MustInitComponents(deps *Dependencies) {
	defaultRegistry.mu.Lock()
	plugins := append([]ComponentPlugin(nil), defaultRegistry.componentPlugins...)
	defaultRegistry.mu.Unlock()

	for _, p := range plugins {
		c := p.MustCreateComponent(deps)
		if c == nil {
			continue
		}
		if err := c.Start(); err != nil {
			panic(fmt.Sprintf("failed to start component %s: %v", p.Name(), err))
		}
		defaultRegistry.mu.Lock()
		defaultRegistry.components = append(defaultRegistry.components, c)
		defaultRegistry.mu.Unlock()
		logger.Infof("Component started name=%s", c.GetName())
	}
}

// RegisterAllRoutes 把所有控制器挂载到 /api/v1，middlewares 只作用于 RegisterRoutes 注册的路由
func RegisterAllRoutes(router *gin.Engine, middlewares ...gin.HandlerFunc) {
	defaultRegistry.mu.Lock()
	plugins := append([]ControllerPlugin(nil), defaultRegistry.controllerPlugins...)
	defaultRegistry.mu.Unlock()

	v1 := router.Group("/api/v1")
	authed := v1.Group("", middlewares...)
	for _, p := range plugins {
		ctrl := p.MustCreateController()
		ctrl.RegisterRoutes(authed)
		if pc, ok := ctrl.(PublicController); ok {
			pc.RegisterPublicRoutes(v1)
		}
		logger.Infof("Routes registered plugin=%s", p.Name())
	}
}

// Shutdown 逆序停止所有组件
func Shutdown() {
	defaultRegistry.mu.Lock()
	defer defaultRegistry.mu.Unlock()
	for i := len(defaultRegistry.components) - 1; i >= 0; i-- {
		c := defaultRegistry.components[i]
		if err := c.Stop(); err != nil {
			logger.Warnf("Component stop failed name=%s error=%v", c.GetName(), err)
		}
	}
	defaultRegistry.components = nil
}
