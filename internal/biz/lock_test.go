package biz

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

// TestLockRegistry_MutualExclusion 同一用户的临界区不会重叠
func TestLockRegistry_MutualExclusion(t *testing.T) {
	r := NewLockRegistry()
	var inside, maxInside int32

	g, ctx := errgroup.WithContext(context.Background())
	for i := 0; i < 50; i++ {
		g.Go(func() error {
			unlock, err := r.Lock(ctx, 1)
			if err != nil {
				return err
			}
			defer unlock()

			n := atomic.AddInt32(&inside, 1)
			for {
				m := atomic.LoadInt32(&maxInside)
				if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
					break
				}
			}
			time.Sleep(100 * time.Microsecond)
			atomic.AddInt32(&inside, -1)
			return nil
		})
	}
	require.NoError(t, g.Wait())
	assert.Equal(t, int32(1), maxInside)
	assert.Equal(t, 1, r.Size())
}

// TestLockRegistry_IndependentUsers 不同用户互不阻塞
func TestLockRegistry_IndependentUsers(t *testing.T) {
	r := NewLockRegistry()
	ctx := context.Background()

	unlock1, err := r.Lock(ctx, 1)
	require.NoError(t, err)
	defer unlock1()

	done := make(chan struct{})
	go func() {
		unlock2, err := r.Lock(ctx, 2)
		if err == nil {
			unlock2()
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock for user 2 blocked by user 1")
	}
	assert.Equal(t, 2, r.Size())
}

// TestLockRegistry_CancelWhileWaiting 等锁期间取消，不会拿到锁
func TestLockRegistry_CancelWhileWaiting(t *testing.T) {
	r := NewLockRegistry()

	unlock, err := r.Lock(context.Background(), 1)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = r.Lock(ctx, 1)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	unlock()

	// 取消的等待者没有占用锁
	unlock2, err := r.Lock(context.Background(), 1)
	require.NoError(t, err)
	unlock2()
}

// TestLockRegistry_CanceledContext 已取消的 ctx 即使锁空闲也失败
func TestLockRegistry_CanceledContext(t *testing.T) {
	r := NewLockRegistry()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Lock(ctx, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

// TestLockRegistry_UnlockIdempotent 重复 unlock 只释放一次
func TestLockRegistry_UnlockIdempotent(t *testing.T) {
	r := NewLockRegistry()
	ctx := context.Background()

	unlock, err := r.Lock(ctx, 1)
	require.NoError(t, err)
	unlock()
	unlock()

	unlock2, err := r.Lock(ctx, 1)
	require.NoError(t, err)

	// 第二次 unlock 若多释放一次，这里会立即拿到锁
	tctx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	_, err = r.Lock(tctx, 1)
	assert.Error(t, err)
	unlock2()
}

// TestLockRegistry_FIFO 等待者按到达顺序获得锁
func TestLockRegistry_FIFO(t *testing.T) {
	r := NewLockRegistry()
	ctx := context.Background()

	unlock, err := r.Lock(ctx, 1)
	require.NoError(t, err)

	var (
		mu    sync.Mutex
		order []int
		wg    sync.WaitGroup
	)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			u, err := r.Lock(ctx, 1)
			if err != nil {
				return
			}
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
			u()
		}(i)
		// 确保第 i 个等待者先于第 i+1 个入队
		time.Sleep(10 * time.Millisecond)
	}

	unlock()
	wg.Wait()
	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
}
