package data

import (
	"context"
	"errors"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-redsync/redsync/v4"
)

// redsyncReconcileLocker 基于 redsync 的对账任务锁
type redsyncReconcileLocker struct {
	rs     *redsync.Redsync
	expiry time.Duration
	log    *log.Helper
}

func newRedsyncReconcileLocker(rs *redsync.Redsync, expiry time.Duration, logger log.Logger) *redsyncReconcileLocker {
	return &redsyncReconcileLocker{
		rs:     rs,
		expiry: expiry,
		log:    log.NewHelper(logger),
	}
}

// TryLock 只尝试一次，锁被占用时返回 ok=false
func (l *redsyncReconcileLocker) TryLock(ctx context.Context, name string) (func(), bool, error) {
	mutex := l.rs.NewMutex(name, redsync.WithExpiry(l.expiry), redsync.WithTries(1))
	if err := mutex.TryLockContext(ctx); err != nil {
		var taken *redsync.ErrTaken
		if errors.Is(err, redsync.ErrFailed) || errors.As(err, &taken) {
			return nil, false, nil
		}
		return nil, false, err
	}

	unlock := func() {
		unlockCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if ok, err := mutex.UnlockContext(unlockCtx); !ok || err != nil {
			l.log.Warnf("Failed to unlock reconcile lock: name=%s, error=%v", name, err)
		}
	}
	return unlock, true, nil
}

// localReconcileLocker 单实例部署时使用
type localReconcileLocker struct {
	mu chan struct{}
}

func newLocalReconcileLocker() *localReconcileLocker {
	return &localReconcileLocker{mu: make(chan struct{}, 1)}
}

func (l *localReconcileLocker) TryLock(context.Context, string) (func(), bool, error) {
	select {
	case l.mu <- struct{}{}:
		return func() { <-l.mu }, true, nil
	default:
		return nil, false, nil
	}
}
