package data

import (
	"context"
	"sort"
	"sync"
	"time"

	"point-service/internal/biz"
)

// Memory 进程内存储，实现 BalanceStore / HistoryLog / UserLister
//
// 重启后数据丢失，用于本地开发与测试。
type Memory struct {
	mu        sync.RWMutex
	balances  map[int64]biz.UserPoint
	histories map[int64][]biz.PointHistory
	nextID    int64
}

// NewMemory 创建内存存储
func NewMemory() *Memory {
	return &Memory{
		balances:  make(map[int64]biz.UserPoint),
		histories: make(map[int64][]biz.PointHistory),
	}
}

// ReadBalance 获取用户余额，不存在时返回 nil
func (m *Memory) ReadBalance(_ context.Context, userID int64) (*biz.UserPoint, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.balances[userID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

// WriteBalance 写入余额
func (m *Memory) WriteBalance(_ context.Context, userID int64, balance int64) (*biz.UserPoint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p := biz.UserPoint{UserID: userID, Balance: balance, UpdatedAt: time.Now()}
	m.balances[userID] = p
	return &p, nil
}

// Append 追加流水
func (m *Memory) Append(_ context.Context, userID int64, amount int64, txType biz.TransactionType, timestamp time.Time) (*biz.PointHistory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	h := biz.PointHistory{
		ID:        m.nextID,
		UserID:    userID,
		Amount:    amount,
		Type:      txType,
		Timestamp: timestamp,
	}
	m.histories[userID] = append(m.histories[userID], h)
	return &h, nil
}

// ReadAll 按插入顺序返回用户流水
func (m *Memory) ReadAll(_ context.Context, userID int64) ([]*biz.PointHistory, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	list := m.histories[userID]
	out := make([]*biz.PointHistory, 0, len(list))
	for i := range list {
		h := list[i]
		out = append(out, &h)
	}
	return out, nil
}

// ListUserIDs 列出所有用户ID（升序）
func (m *Memory) ListUserIDs(_ context.Context) ([]int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]int64, 0, len(m.balances))
	for id := range m.balances {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}
