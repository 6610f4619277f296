package biz

import (
	"context"
	"time"
)

// PointEvent 积分变动事件，提交成功后发送到 RocketMQ
// HistoryID 单调递增，消费方可据此对同一用户的事件排序
type PointEvent struct {
	EventID   string          `json:"event_id"`
	HistoryID int64           `json:"history_id"`
	UserID    int64           `json:"user_id"`
	Type      TransactionType `json:"type"`
	Amount    int64           `json:"amount"`  // 本次请求的变动值
	Balance   int64           `json:"balance"` // 交易后的余额
	Timestamp time.Time       `json:"timestamp"`
}

// EventPublisher 积分事件发布接口（未启用 MQ 时为空实现）
type EventPublisher interface {
	Publish(ctx context.Context, event *PointEvent) error
}
