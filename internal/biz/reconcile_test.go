package biz

import (
	"context"
	"errors"
	"testing"
	"time"

	pointErrors "point-service/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLocker struct {
	held     bool
	err      error
	released int
}

func (l *fakeLocker) TryLock(context.Context, string) (func(), bool, error) {
	if l.err != nil {
		return nil, false, l.err
	}
	if l.held {
		return nil, false, nil
	}
	l.held = true
	return func() {
		l.held = false
		l.released++
	}, true, nil
}

func newTestReconcileUseCase(store *fakeStore, locker ReconcileLocker) *ReconcileUseCase {
	conf := &ReconcileConfig{ConfirmDelay: time.Millisecond, LockExpiry: time.Minute}
	return NewReconcileUseCase(store, store, store, locker, conf, getTestLogger())
}

// TestReconcileUseCase_Consistent 正常提交后余额与流水一致
func TestReconcileUseCase_Consistent(t *testing.T) {
	store := newFakeStore()
	store.seed(1, 0)
	store.seed(2, 0)
	points := newTestPointUseCase(store, nil, nil)
	ctx := context.Background()

	_, err := points.Charge(ctx, 1, 500)
	require.NoError(t, err)
	_, err = points.Spend(ctx, 1, 200)
	require.NoError(t, err)

	locker := &fakeLocker{}
	report, err := newTestReconcileUseCase(store, locker).Reconcile(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Checked)
	assert.Empty(t, report.Mismatched)
	assert.Equal(t, 1, locker.released)
}

// TestReconcileUseCase_Mismatch 余额被绕过引擎修改
func TestReconcileUseCase_Mismatch(t *testing.T) {
	store := newFakeStore()
	store.seed(1, 0)
	store.seed(2, 300) // 没有流水但余额非 0
	points := newTestPointUseCase(store, nil, nil)
	ctx := context.Background()

	_, err := points.Charge(ctx, 1, 500)
	require.NoError(t, err)

	report, err := newTestReconcileUseCase(store, &fakeLocker{}).Reconcile(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, report.Mismatched)
}

// TestReconcileUseCase_Skipped 其他实例持有任务锁
func TestReconcileUseCase_Skipped(t *testing.T) {
	store := newFakeStore()
	store.seed(2, 300)

	report, err := newTestReconcileUseCase(store, &fakeLocker{held: true}).Reconcile(context.Background())
	require.NoError(t, err)
	assert.True(t, report.Skipped)
	assert.Zero(t, report.Checked)
}

// TestReconcileUseCase_Errors 锁与存储错误
func TestReconcileUseCase_Errors(t *testing.T) {
	_, err := newTestReconcileUseCase(newFakeStore(), &fakeLocker{err: errors.New("redis down")}).Reconcile(context.Background())
	assert.True(t, pointErrors.IsLockAcquireFailed(err))

	store := newFakeStore()
	store.seed(1, 0)
	store.readErr = errStorage
	_, err = newTestReconcileUseCase(store, &fakeLocker{}).Reconcile(context.Background())
	assert.True(t, pointErrors.IsStorageFailure(err))
}

// TestReconcileUseCase_Timeout 超过 Timeout 的对账被中止并释放任务锁
func TestReconcileUseCase_Timeout(t *testing.T) {
	store := newFakeStore()
	store.seed(1, 0)
	locker := &fakeLocker{}
	uc := NewReconcileUseCase(store, store, store, locker,
		&ReconcileConfig{Timeout: time.Nanosecond, LockExpiry: time.Minute}, getTestLogger())

	_, err := uc.Reconcile(context.Background())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, locker.released)
}
