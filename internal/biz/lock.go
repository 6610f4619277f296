package biz

import (
	"context"
	"sync"
	"time"

	"point-service/internal/metrics"

	"golang.org/x/sync/semaphore"
)

// LockRegistry 进程内按用户划分的互斥锁注册表
//
// 每个用户一把容量为 1 的 semaphore.Weighted，等待者按到达顺序获得锁，
// 等待可以通过 context 取消且不会占用锁。锁在首次访问时创建，进程生命周期内不回收，
// 内存随出现过的用户数单调增长（容量规划见 point_lock_registry_size 指标）。
// 不同用户之间没有任何串行化，注册表自身的互斥只保护 map 查找。
type LockRegistry struct {
	mu      sync.Mutex
	locks   map[int64]*semaphore.Weighted
	metrics *metrics.PointMetrics
}

// NewLockRegistry 创建用户锁注册表
func NewLockRegistry() *LockRegistry {
	return &LockRegistry{
		locks:   make(map[int64]*semaphore.Weighted),
		metrics: metrics.GetMetrics(),
	}
}

func (r *LockRegistry) get(userID int64) *semaphore.Weighted {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.locks[userID]
	if !ok {
		l = semaphore.NewWeighted(1)
		r.locks[userID] = l
		if r.metrics != nil {
			r.metrics.LockRegistrySize.Set(float64(len(r.locks)))
		}
	}
	return l
}

// Lock 获取用户锁，返回的 unlock 可重复调用，只会释放一次
func (r *LockRegistry) Lock(ctx context.Context, userID int64) (func(), error) {
	// 已取消的 ctx 不能拿到锁
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l := r.get(userID)
	start := time.Now()
	if err := l.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	if r.metrics != nil {
		r.metrics.LockWaitDuration.Observe(time.Since(start).Seconds())
	}

	var once sync.Once
	return func() {
		once.Do(func() { l.Release(1) })
	}, nil
}

// Size 已创建的用户锁数量
func (r *LockRegistry) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.locks)
}
