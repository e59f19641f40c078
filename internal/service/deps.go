package service

import (
	"time"

	"go.uber.org/zap"

	"github.com/vikas186/cts-optimizer-backend/internal/events"
	"github.com/vikas186/cts-optimizer-backend/internal/repository"
	"github.com/vikas186/cts-optimizer-backend/internal/store"
)

// Deps 各 service 共享的依赖
// Locker / KV / Events 为空时使用无操作实现（未启用 redis 的单机模式）
type Deps struct {
	Dimensions repository.DimensionRepository
	Facts      repository.FactRepository
	Results    repository.ResultRepository
	TenantData repository.TenantDataRepository

	KV      store.KV
	Locker  store.Locker
	LockTTL time.Duration
	Events  events.Publisher
	Logger  *zap.Logger
}

func (d Deps) withDefaults() Deps {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.KV == nil {
		d.KV = store.NewMemoryKV()
	}
	if d.Locker == nil {
		d.Locker = store.NopLocker{}
	}
	if d.LockTTL <= 0 {
		d.LockTTL = 5 * time.Minute
	}
	if d.Events == nil {
		d.Events = events.Nop{}
	}
	return d
}

func (d Deps) lock() tenantLock {
	return tenantLock{locker: d.Locker, ttl: d.LockTTL, logger: d.Logger}
}
