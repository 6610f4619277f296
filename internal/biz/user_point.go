package biz

import (
	"context"
	"time"
)

// TransactionType 积分交易类型
type TransactionType string

const (
	// TransactionCharge 充值
	TransactionCharge TransactionType = "CHARGE"
	// TransactionUse 使用
	TransactionUse TransactionType = "USE"
)

// Valid 是否为已知交易类型
func (t TransactionType) Valid() bool {
	return t == TransactionCharge || t == TransactionUse
}

// UserPoint 用户积分余额领域对象
type UserPoint struct {
	UserID    int64
	Balance   int64
	UpdatedAt time.Time
}

// PointHistory 积分流水领域对象，Amount 为交易后的余额而不是变动值
type PointHistory struct {
	ID        int64
	UserID    int64
	Amount    int64
	Type      TransactionType
	Timestamp time.Time
}

// BalanceStore 余额存储接口（定义在 biz 层），本身不提供并发保证
type BalanceStore interface {
	// ReadBalance 读取主存储，记录不存在时返回 nil, nil
	ReadBalance(ctx context.Context, userID int64) (*UserPoint, error)
	// WriteBalance 写入余额并返回提交后的记录（含时间戳）
	WriteBalance(ctx context.Context, userID int64, balance int64) (*UserPoint, error)
}

// CachedBalanceReader BalanceStore 的可选实现，查询时允许读缓存，结果可能滞后于主存储。
// 变更与对账只使用 ReadBalance。
type CachedBalanceReader interface {
	ReadCachedBalance(ctx context.Context, userID int64) (*UserPoint, error)
}

// HistoryLog 积分流水存储接口，只追加不修改
type HistoryLog interface {
	// Append 追加一条流水，ID 由存储分配且单调递增
	Append(ctx context.Context, userID int64, amount int64, txType TransactionType, timestamp time.Time) (*PointHistory, error)
	// ReadAll 按插入顺序返回用户全部流水，可能为空
	ReadAll(ctx context.Context, userID int64) ([]*PointHistory, error)
}

// UserLister 列出所有存在余额记录的用户（对账用）
type UserLister interface {
	ListUserIDs(ctx context.Context) ([]int64, error)
}
