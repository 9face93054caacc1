package resource

import (
	"sync"

	"github.com/redis/go-redis/v9"

	"videogen-service/pkg/assert"
	"videogen-service/pkg/config"
	"videogen-service/pkg/logger"
	"videogen-service/pkg/manager"
	"videogen-service/pkg/redisclient"
)

var (
	redisResourceOnce sync.Once
	redisSingleton    *RedisResource
)

// RedisResource 共享的Redis连接，用于批量派发锁
type RedisResource struct {
	client *redisclient.Client
}

// DefaultRedisResource 获取Redis资源单例
func DefaultRedisResource() *RedisResource {
	assert.NotCircular()
	redisResourceOnce.Do(func() {
		redisSingleton = &RedisResource{}
	})
	assert.NotNil(redisSingleton)
	return redisSingleton
}

// MustOpen 按全局配置连接，未启用时跳过，派发锁退化为进程内锁
func (r *RedisResource) MustOpen() {
	if r.client != nil {
		return
	}

	cfg := config.GetGlobalConfig()
	if cfg == nil {
		panic("global config not initialized")
	}
	if !cfg.Redis.Enabled {
		logger.Warnf("Redis disabled, batch dispatch lock is process local")
		return
	}

	client, err := redisclient.New(cfg.Redis)
	if err != nil {
		panic("failed to connect redis: " + err.Error())
	}

	r.client = client
	logger.Infof("Redis resource initialized addr=%s db=%d", cfg.Redis.GetRedisAddr(), cfg.Redis.DB)
}

// Close 关闭连接池
func (r *RedisResource) Close() {
	if r.client != nil {
		_ = r.client.Close()
	}
}

// Client 底层客户端，未启用时为nil
func (r *RedisResource) Client() *redis.Client {
	if r.client == nil {
		return nil
	}
	return r.client.Raw()
}

// RedisResourcePlugin Redis资源插件
type RedisResourcePlugin struct{}

func (p *RedisResourcePlugin) Name() string {
	return "redis"
}

func (p *RedisResourcePlugin) MustCreateResource() manager.Resource {
	return DefaultRedisResource()
}
