package biz

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/stretchr/testify/mock"
)

var errStorage = errors.New("storage unavailable")

// fakeStore 内存版 BalanceStore/HistoryLog/UserLister，可注入失败
type fakeStore struct {
	mu        sync.Mutex
	balances  map[int64]*UserPoint
	histories []*PointHistory
	nextID    int64

	readErr    error
	writeErr   error
	appendErr  error
	writeCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{balances: make(map[int64]*UserPoint)}
}

func (s *fakeStore) seed(userID, balance int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balances[userID] = &UserPoint{UserID: userID, Balance: balance, UpdatedAt: time.Now()}
}

func (s *fakeStore) ReadBalance(_ context.Context, userID int64) (*UserPoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.readErr != nil {
		return nil, s.readErr
	}
	p, ok := s.balances[userID]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (s *fakeStore) WriteBalance(_ context.Context, userID, balance int64) (*UserPoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeCalls++
	if s.writeErr != nil {
		return nil, s.writeErr
	}
	p := &UserPoint{UserID: userID, Balance: balance, UpdatedAt: time.Now()}
	s.balances[userID] = p
	cp := *p
	return &cp, nil
}

func (s *fakeStore) Append(_ context.Context, userID, amount int64, txType TransactionType, ts time.Time) (*PointHistory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.appendErr != nil {
		return nil, s.appendErr
	}
	s.nextID++
	h := &PointHistory{ID: s.nextID, UserID: userID, Amount: amount, Type: txType, Timestamp: ts}
	s.histories = append(s.histories, h)
	cp := *h
	return &cp, nil
}

func (s *fakeStore) ReadAll(_ context.Context, userID int64) ([]*PointHistory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*PointHistory
	for _, h := range s.histories {
		if h.UserID == userID {
			cp := *h
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *fakeStore) ListUserIDs(_ context.Context) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]int64, 0, len(s.balances))
	for id := range s.balances {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// MockEventPublisher 模拟 EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, event *PointEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// MockCommandDeduper 模拟 CommandDeduper
type MockCommandDeduper struct {
	mock.Mock
}

func (m *MockCommandDeduper) Acquire(ctx context.Context, requestID string) (bool, error) {
	args := m.Called(ctx, requestID)
	return args.Bool(0), args.Error(1)
}

func (m *MockCommandDeduper) Release(ctx context.Context, requestID string) error {
	args := m.Called(ctx, requestID)
	return args.Error(0)
}

// 获取测试用logger
func getTestLogger() log.Logger {
	return log.NewStdLogger(io.Discard)
}

func newTestPointUseCase(store *fakeStore, publisher EventPublisher, conf *PointConfig) *PointUseCase {
	if conf == nil {
		conf = NewPointConfig(nil)
	}
	return NewPointUseCase(store, store, NewLockRegistry(), publisher, conf, getTestLogger())
}
