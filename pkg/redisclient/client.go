package redisclient

import (
	"context"
	"crypto/tls"
	"time"

	"github.com/redis/go-redis/v9"

	"videogen-service/pkg/config"
)

// Client 封装 go-redis 客户端
type Client struct {
	native *redis.Client
}

// New 按配置创建客户端并做一次 PING
func New(cfg config.RedisConfig) (*Client, error) {
	opts := &redis.Options{
		Addr:         cfg.GetRedisAddr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  pickDuration(cfg.DialTimeout, 5*time.Second),
		ReadTimeout:  pickDuration(cfg.ReadTimeout, 3*time.Second),
		WriteTimeout: pickDuration(cfg.WriteTimeout, 3*time.Second),
	}
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	if cfg.MinIdleConns > 0 {
		opts.MinIdleConns = cfg.MinIdleConns
	}
	if cfg.EnableTLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	return Wrap(redis.NewClient(opts))
}

// Wrap 包装已有客户端，PING失败时关闭
func Wrap(cli *redis.Client) (*Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := cli.Ping(ctx).Err(); err != nil {
		_ = cli.Close()
		return nil, err
	}
	return &Client{native: cli}, nil
}

// Raw 返回底层客户端
func (c *Client) Raw() *redis.Client {
	return c.native
}

// Close 关闭连接池
func (c *Client) Close() error {
	return c.native.Close()
}

func pickDuration(v time.Duration, fallback time.Duration) time.Duration {
	if v <= 0 {
		return fallback
	}
	return v
}
