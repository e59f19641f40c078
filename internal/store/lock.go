package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// ErrLockHeld 锁已被其它请求持有
var ErrLockHeld = errors.New("lock held by another run")

// ErrLockLost 续期时发现锁已过期或被其它运行取得
var ErrLockLost = errors.New("lock lost")

// Locker 租户级互斥锁
type Locker interface {
	// Acquire 获取锁；锁被占用时返回 ErrLockHeld
	Acquire(ctx context.Context, key string, ttl time.Duration) (Lease, error)
}

// Lease 已持有的锁
type Lease interface {
	// Refresh 把过期时间重置为获取时的 ttl
	Refresh(ctx context.Context) error
	Release(ctx context.Context) error
}

// releaseScript 只删除自己持有的锁（token 一致）
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

var refreshScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)

// RedisLocker SET NX + TTL 实现的锁；进程崩溃时锁在 TTL 后自动失效
type RedisLocker struct {
	c *redis.Client
}

func NewRedisLocker(c *redis.Client) *RedisLocker { return &RedisLocker{c: c} }

func (l *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (Lease, error) {
	token := uuid.NewString()
	ok, err := l.c.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire lock %s: %w", key, err)
	}
	if !ok {
		return nil, ErrLockHeld
	}
	return &redisLease{c: l.c, key: key, token: token, ttl: ttl}, nil
}

type redisLease struct {
	c     *redis.Client
	key   string
	token string
	ttl   time.Duration
}

func (l *redisLease) Refresh(ctx context.Context) error {
	n, err := refreshScript.Run(ctx, l.c, []string{l.key}, l.token, l.ttl.Milliseconds()).Int64()
	if err != nil && err != redis.Nil {
		return fmt.Errorf("failed to refresh lock %s: %w", l.key, err)
	}
	if n == 0 {
		return fmt.Errorf("refresh lock %s: %w", l.key, ErrLockLost)
	}
	return nil
}

func (l *redisLease) Release(ctx context.Context) error {
	if err := releaseScript.Run(ctx, l.c, []string{l.key}, l.token).Err(); err != nil && err != redis.Nil {
		return fmt.Errorf("failed to release lock %s: %w", l.key, err)
	}
	return nil
}

// NopLocker 不做互斥（Redis 未启用时使用）
type NopLocker struct{}

func (NopLocker) Acquire(context.Context, string, time.Duration) (Lease, error) {
	return nopLease{}, nil
}

type nopLease struct{}

func (nopLease) Refresh(context.Context) error { return nil }
func (nopLease) Release(context.Context) error { return nil }
