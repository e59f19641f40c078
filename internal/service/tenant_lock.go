package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/vikas186/cts-optimizer-backend/internal/store"
)

// tenantLock 同一租户的导入与计算互斥（共用一个锁）
type tenantLock struct {
	locker store.Locker
	ttl    time.Duration
	// refreshEvery 续期间隔，<= 0 时取 ttl/3
	refreshEvery time.Duration
	logger       *zap.Logger
}

func lockKey(orgID string) string {
	return "cts:lock:" + orgID
}

// run 持有租户锁执行 fn；锁被占用时返回 ErrRunInProgress。
// fn 执行期间后台按 refreshEvery 续期，进程崩溃时锁最多保留一个 ttl
func (l tenantLock) run(ctx context.Context, orgID string, fn func() error) error {
	if l.locker == nil {
		return fn()
	}
	lease, err := l.locker.Acquire(ctx, lockKey(orgID), l.ttl)
	if err != nil {
		if errors.Is(err, store.ErrLockHeld) {
			return ErrRunInProgress
		}
		return err
	}

	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		l.keepAlive(orgID, lease, stop)
	}()
	defer func() {
		close(stop)
		<-done
		// 请求 ctx 可能已取消，释放锁使用独立的 ctx
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := lease.Release(releaseCtx); err != nil {
			l.logger.Warn("Failed to release tenant lock", zap.String("organization_id", orgID), zap.Error(err))
		}
	}()
	return fn()
}

func (l tenantLock) keepAlive(orgID string, lease store.Lease, stop <-chan struct{}) {
	every := l.refreshEvery
	if every <= 0 {
		every = l.ttl / 3
	}
	if every <= 0 {
		return
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			refreshCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			err := lease.Refresh(refreshCtx)
			cancel()
			if errors.Is(err, store.ErrLockLost) {
				l.logger.Error("Tenant lock lost during run", zap.String("organization_id", orgID))
				return
			}
			if err != nil {
				l.logger.Warn("Failed to refresh tenant lock", zap.String("organization_id", orgID), zap.Error(err))
			}
		}
	}
}
