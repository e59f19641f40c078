package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestRedisKV(t *testing.T) {
	mr, client := setupTestRedis(t)
	kv := NewRedisKV(client)
	ctx := context.Background()

	_, err := kv.Get(ctx, "missing")
	assert.True(t, errors.Is(err, ErrMiss))

	require.NoError(t, kv.Set(ctx, "k", "v", time.Minute))
	got, err := kv.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)

	mr.FastForward(2 * time.Minute)
	_, err = kv.Get(ctx, "k")
	assert.True(t, errors.Is(err, ErrMiss))

	require.NoError(t, kv.Set(ctx, "k2", "v", 0))
	require.NoError(t, kv.Del(ctx, "k2"))
	assert.False(t, mr.Exists("k2"))
}

func TestMemoryKV(t *testing.T) {
	kv := NewMemoryKV()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	kv.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "k", "v", time.Minute))
	got, err := kv.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)

	now = now.Add(time.Minute)
	_, err = kv.Get(ctx, "k")
	assert.True(t, errors.Is(err, ErrMiss))

	require.NoError(t, kv.Set(ctx, "forever", "x", 0))
	now = now.Add(24 * time.Hour)
	_, err = kv.Get(ctx, "forever")
	assert.NoError(t, err)
}

func TestRedisLocker_MutualExclusion(t *testing.T) {
	mr, client := setupTestRedis(t)
	locker := NewRedisLocker(client)
	ctx := context.Background()

	lease, err := locker.Acquire(ctx, "lock:org-1", time.Minute)
	require.NoError(t, err)

	_, err = locker.Acquire(ctx, "lock:org-1", time.Minute)
	assert.True(t, errors.Is(err, ErrLockHeld))

	// 其它租户不受影响
	other, err := locker.Acquire(ctx, "lock:org-2", time.Minute)
	require.NoError(t, err)
	require.NoError(t, other.Release(ctx))

	require.NoError(t, lease.Release(ctx))
	assert.False(t, mr.Exists("lock:org-1"))

	lease, err = locker.Acquire(ctx, "lock:org-1", time.Minute)
	require.NoError(t, err)
	require.NoError(t, lease.Release(ctx))
}

func TestRedisLocker_ReleaseDoesNotDropForeignLock(t *testing.T) {
	mr, client := setupTestRedis(t)
	locker := NewRedisLocker(client)
	ctx := context.Background()

	first, err := locker.Acquire(ctx, "lock:org-1", time.Second)
	require.NoError(t, err)

	// 锁过期后被另一次运行获取
	mr.FastForward(2 * time.Second)
	second, err := locker.Acquire(ctx, "lock:org-1", time.Minute)
	require.NoError(t, err)

	require.NoError(t, first.Release(ctx))
	assert.True(t, mr.Exists("lock:org-1"))
	require.NoError(t, second.Release(ctx))
	assert.False(t, mr.Exists("lock:org-1"))
}

func TestRedisLocker_RefreshExtendsTTL(t *testing.T) {
	mr, client := setupTestRedis(t)
	locker := NewRedisLocker(client)
	ctx := context.Background()

	lease, err := locker.Acquire(ctx, "lock:org-1", 10*time.Second)
	require.NoError(t, err)

	mr.FastForward(8 * time.Second)
	require.NoError(t, lease.Refresh(ctx))
	assert.Equal(t, 10*time.Second, mr.TTL("lock:org-1"))

	// 不续期的话此时已经过期
	mr.FastForward(8 * time.Second)
	assert.True(t, mr.Exists("lock:org-1"))
	require.NoError(t, lease.Release(ctx))
}

func TestRedisLocker_RefreshAfterTakeover(t *testing.T) {
	mr, client := setupTestRedis(t)
	locker := NewRedisLocker(client)
	ctx := context.Background()

	first, err := locker.Acquire(ctx, "lock:org-1", time.Second)
	require.NoError(t, err)
	mr.FastForward(2 * time.Second)
	assert.ErrorIs(t, first.Refresh(ctx), ErrLockLost)

	second, err := locker.Acquire(ctx, "lock:org-1", time.Minute)
	require.NoError(t, err)
	assert.ErrorIs(t, first.Refresh(ctx), ErrLockLost)
	assert.Equal(t, time.Minute, mr.TTL("lock:org-1"))
	require.NoError(t, second.Release(ctx))
}

func TestNopLocker(t *testing.T) {
	var l Locker = NopLocker{}
	lease, err := l.Acquire(context.Background(), "x", time.Second)
	require.NoError(t, err)
	assert.NoError(t, lease.Refresh(context.Background()))
	assert.NoError(t, lease.Release(context.Background()))
	_, err = l.Acquire(context.Background(), "x", time.Second)
	assert.NoError(t, err)
}
