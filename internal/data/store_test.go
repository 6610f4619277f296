package data

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"point-service/internal/biz"
	"point-service/internal/conf"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

// pointStore 三个存储接口的组合，Memory 与 BoltStore 都实现
type pointStore interface {
	biz.BalanceStore
	biz.HistoryLog
	biz.UserLister
}

func newTestBoltStore(t *testing.T) *BoltStore {
	t.Helper()
	s, err := NewBoltStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// 两种嵌入式存储跑同一组用例
func storeCases(t *testing.T) map[string]pointStore {
	return map[string]pointStore{
		"memory": NewMemory(),
		"bolt":   newTestBoltStore(t),
	}
}

func TestStore_Balance(t *testing.T) {
	for name, s := range storeCases(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			p, err := s.ReadBalance(ctx, 1)
			require.NoError(t, err)
			assert.Nil(t, p)

			written, err := s.WriteBalance(ctx, 1, 500)
			require.NoError(t, err)
			assert.Equal(t, int64(500), written.Balance)
			assert.False(t, written.UpdatedAt.IsZero())

			p, err = s.ReadBalance(ctx, 1)
			require.NoError(t, err)
			require.NotNil(t, p)
			assert.Equal(t, int64(1), p.UserID)
			assert.Equal(t, int64(500), p.Balance)
			assert.True(t, written.UpdatedAt.Equal(p.UpdatedAt))

			_, err = s.WriteBalance(ctx, 0, 0)
			require.NoError(t, err)
			ids, err := s.ListUserIDs(ctx)
			require.NoError(t, err)
			assert.Equal(t, []int64{0, 1}, ids)
		})
	}
}

func TestStore_History(t *testing.T) {
	for name, s := range storeCases(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

			histories, err := s.ReadAll(ctx, 1)
			require.NoError(t, err)
			assert.Empty(t, histories)

			h1, err := s.Append(ctx, 1, 1000, biz.TransactionCharge, ts)
			require.NoError(t, err)
			h2, err := s.Append(ctx, 2, 50, biz.TransactionCharge, ts)
			require.NoError(t, err)
			h3, err := s.Append(ctx, 1, 400, biz.TransactionUse, ts.Add(time.Second))
			require.NoError(t, err)

			assert.Less(t, h1.ID, h2.ID)
			assert.Less(t, h2.ID, h3.ID)

			histories, err = s.ReadAll(ctx, 1)
			require.NoError(t, err)
			require.Len(t, histories, 2)
			assert.Equal(t, h1.ID, histories[0].ID)
			assert.Equal(t, int64(1000), histories[0].Amount)
			assert.Equal(t, biz.TransactionUse, histories[1].Type)
			assert.Equal(t, int64(400), histories[1].Amount)
			assert.True(t, ts.Add(time.Second).Equal(histories[1].Timestamp))
		})
	}
}

func TestStore_ConcurrentAppend(t *testing.T) {
	for name, s := range storeCases(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			var wg sync.WaitGroup
			for i := 0; i < 20; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					_, _ = s.Append(ctx, int64(i%2), int64(i), biz.TransactionCharge, time.Now())
				}(i)
			}
			wg.Wait()

			a, err := s.ReadAll(ctx, 0)
			require.NoError(t, err)
			b, err := s.ReadAll(ctx, 1)
			require.NoError(t, err)
			assert.Len(t, a, 10)
			assert.Len(t, b, 10)
		})
	}
}

func TestBoltStore_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "point.db")
	ctx := context.Background()

	s, err := NewBoltStore(path)
	require.NoError(t, err)
	_, err = s.WriteBalance(ctx, 9, 70)
	require.NoError(t, err)
	h, err := s.Append(ctx, 9, 70, biz.TransactionCharge, time.Now())
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = NewBoltStore(path)
	require.NoError(t, err)
	defer s.Close()

	p, err := s.ReadBalance(ctx, 9)
	require.NoError(t, err)
	assert.Equal(t, int64(70), p.Balance)

	// 重新打开后流水ID继续递增
	h2, err := s.Append(ctx, 9, 60, biz.TransactionUse, time.Now())
	require.NoError(t, err)
	assert.Greater(t, h2.ID, h.ID)
}

// TestNewData_Memory 默认驱动组装出可用的存储
func TestNewData_Memory(t *testing.T) {
	d, cleanup, err := NewData(&conf.Data{}, log.DefaultLogger)
	require.NoError(t, err)
	defer cleanup()

	balances := NewBalanceStore(d, log.DefaultLogger)
	histories := NewHistoryLog(d, log.DefaultLogger)
	users := NewUserLister(d, log.DefaultLogger)
	assert.IsType(t, &Memory{}, balances)
	assert.IsType(t, noopEventPublisher{}, NewEventPublisher(d, log.DefaultLogger))
	assert.IsType(t, &memoryCommandDeduper{}, NewCommandDeduper(d, log.DefaultLogger))
	assert.IsType(t, &localReconcileLocker{}, NewReconcileLocker(d, biz.NewReconcileConfig(nil), log.DefaultLogger))

	ctx := context.Background()
	_, err = balances.WriteBalance(ctx, 3, 30)
	require.NoError(t, err)
	_, err = histories.Append(ctx, 3, 30, biz.TransactionCharge, time.Now())
	require.NoError(t, err)
	ids, err := users.ListUserIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{3}, ids)
}

// TestNewData_Bolt bolt 驱动
func TestNewData_Bolt(t *testing.T) {
	c := &conf.Data{
		Driver: "bolt",
		Bolt:   &conf.Data_Bolt{Path: filepath.Join(t.TempDir(), "point.db")},
	}
	d, cleanup, err := NewData(c, log.DefaultLogger)
	require.NoError(t, err)
	defer cleanup()

	assert.IsType(t, &BoltStore{}, NewBalanceStore(d, log.DefaultLogger))
	assert.IsType(t, &BoltStore{}, NewHistoryLog(d, log.DefaultLogger))
}

func TestNewData_UnknownDriver(t *testing.T) {
	_, _, err := NewData(&conf.Data{Driver: "oracle"}, log.DefaultLogger)
	assert.ErrorContains(t, err, "unknown data driver")
}

// TestStore_ConcurrentWrites 多个 goroutine 同时写不同用户
func TestStore_ConcurrentWrites(t *testing.T) {
	for name, s := range storeCases(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			var g errgroup.Group
			for i := int64(1); i <= 8; i++ {
				userID := i
				g.Go(func() error {
					for n := int64(1); n <= 20; n++ {
						if _, err := s.WriteBalance(ctx, userID, n*10); err != nil {
							return err
						}
						if _, err := s.Append(ctx, userID, n*10, biz.TransactionCharge, time.Now()); err != nil {
							return err
						}
					}
					return nil
				})
			}
			require.NoError(t, g.Wait())

			ids, err := s.ListUserIDs(ctx)
			require.NoError(t, err)
			assert.Len(t, ids, 8)
			for _, userID := range ids {
				p, err := s.ReadBalance(ctx, userID)
				require.NoError(t, err)
				assert.Equal(t, int64(200), p.Balance)
				histories, err := s.ReadAll(ctx, userID)
				require.NoError(t, err)
				assert.Len(t, histories, 20)
			}
		})
	}
}

func TestCheckSharedDriver(t *testing.T) {
	tests := []struct {
		name    string
		conf    *conf.Data
		wantErr bool
	}{
		{name: "mysql", conf: &conf.Data{Driver: "mysql"}},
		{name: "sqlite", conf: &conf.Data{Driver: "sqlite"}},
		{name: "bolt 文件被服务进程独占", conf: &conf.Data{Driver: "bolt"}, wantErr: true},
		{name: "memory", conf: &conf.Data{Driver: "memory"}, wantErr: true},
		{name: "未配置时默认 memory", conf: nil, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckSharedDriver(tt.conf)
			if tt.wantErr {
				assert.ErrorContains(t, err, "private to the server process")
				return
			}
			assert.NoError(t, err)
		})
	}
}
