package redis

import (
	"context"

	"github.com/vikas186/cts-optimizer-backend/internal/common/config"

	"github.com/go-redis/redis/v8"
)

// Client 供租户锁、维度缓存和事件 Stream 共用
type Client = redis.Client

// NewRedisClient 按 REDIS_* 配置创建客户端，不会主动连接
func NewRedisClient(cfg *config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// Ping 启动时探测 Redis，失败则关闭锁/缓存/Stream 功能
func Ping(ctx context.Context, client *redis.Client) error {
	return client.Ping(ctx).Err()
}

// Close 关闭Redis连接
func Close(client *redis.Client) error {
	if client == nil {
		return nil
	}
	return client.Close()
}
