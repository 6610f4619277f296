package biz

import (
	"context"
	"encoding/json"

	"point-service/internal/constants"
	pointErrors "point-service/internal/errors"
	"point-service/internal/metrics"

	kerrors "github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
)

// PointCommand 异步积分命令（来自 MQ）
type PointCommand struct {
	RequestID string          `json:"request_id"` // 幂等键，由上游生成
	UserID    int64           `json:"user_id"`
	Type      TransactionType `json:"type"`
	Amount    int64           `json:"amount"`
}

// ParsePointCommand 解析消息体
func ParsePointCommand(body []byte) (*PointCommand, error) {
	var cmd PointCommand
	if err := json.Unmarshal(body, &cmd); err != nil {
		return nil, pointErrors.ErrorInvalidCommand("invalid command body").WithCause(err)
	}
	return &cmd, nil
}

// Validate 命令格式校验，金额与用户的业务校验交给 PointUseCase
func (c *PointCommand) Validate() error {
	if c.RequestID == "" {
		return pointErrors.ErrorInvalidCommand("request_id is required")
	}
	if !c.Type.Valid() {
		return pointErrors.ErrorInvalidCommand("unknown command type: %q", c.Type)
	}
	return nil
}

// CommandDeduper 命令去重
type CommandDeduper interface {
	// Acquire 占用请求ID，已被占用时返回 false
	Acquire(ctx context.Context, requestID string) (bool, error)
	// Release 释放请求ID，使后续重投可以再次处理
	Release(ctx context.Context, requestID string) error
}

// CommandUseCase 异步命令处理
type CommandUseCase struct {
	points  *PointUseCase
	deduper CommandDeduper
	log     *log.Helper
	metrics *metrics.PointMetrics
}

// NewCommandUseCase 创建命令处理 UseCase
func NewCommandUseCase(points *PointUseCase, deduper CommandDeduper, logger log.Logger) *CommandUseCase {
	return &CommandUseCase{
		points:  points,
		deduper: deduper,
		log:     log.NewHelper(logger),
		metrics: metrics.GetMetrics(),
	}
}

// Handle 处理一条命令
//
// 重复的请求ID直接返回 nil。可重试错误（存储、锁）会释放请求ID并原样返回，
// 由消费者决定是否稍后重投；业务校验失败同样返回错误，但请求ID保持占用。
func (uc *CommandUseCase) Handle(ctx context.Context, cmd *PointCommand) (err error) {
	cmdType := string(cmd.Type)
	defer func() {
		uc.count(cmdType, err)
	}()

	if err := cmd.Validate(); err != nil {
		return err
	}

	ok, err := uc.deduper.Acquire(ctx, cmd.RequestID)
	if err != nil {
		uc.log.WithContext(ctx).Errorf("Dedupe acquire failed: request_id=%s, error=%v", cmd.RequestID, err)
		return pointErrors.ErrorStorageFailure("failed to check command request id").WithCause(err)
	}
	if !ok {
		uc.log.WithContext(ctx).Infof("Duplicate command skipped: request_id=%s, user_id=%d", cmd.RequestID, cmd.UserID)
		if uc.metrics != nil {
			uc.metrics.CommandTotal.WithLabelValues(cmdType, constants.ResultDuplicate).Inc()
		}
		return nil
	}

	switch cmd.Type {
	case TransactionCharge:
		_, err = uc.points.Charge(ctx, cmd.UserID, cmd.Amount)
	case TransactionUse:
		_, err = uc.points.Spend(ctx, cmd.UserID, cmd.Amount)
	}
	if err == nil {
		uc.log.WithContext(ctx).Infof("Command applied: request_id=%s, user_id=%d, type=%s, amount=%d",
			cmd.RequestID, cmd.UserID, cmd.Type, cmd.Amount)
		if uc.metrics != nil {
			uc.metrics.CommandTotal.WithLabelValues(cmdType, constants.ResultSuccess).Inc()
		}
		return nil
	}

	if pointErrors.IsRetryable(err) {
		if rerr := uc.deduper.Release(ctx, cmd.RequestID); rerr != nil {
			uc.log.WithContext(ctx).Warnf("Dedupe release failed: request_id=%s, error=%v", cmd.RequestID, rerr)
		}
	}
	uc.log.WithContext(ctx).Warnf("Command rejected: request_id=%s, user_id=%d, type=%s, amount=%d, reason=%s",
		cmd.RequestID, cmd.UserID, cmd.Type, cmd.Amount, kerrors.Reason(err))
	return err
}

func (uc *CommandUseCase) count(cmdType string, err error) {
	if uc.metrics == nil {
		return
	}
	switch {
	case err == nil:
		// 成功与重复在各自分支计数
		return
	case pointErrors.IsRetryable(err):
		uc.metrics.CommandTotal.WithLabelValues(cmdType, constants.ResultRetry).Inc()
	default:
		uc.metrics.CommandTotal.WithLabelValues(cmdType, constants.ResultRejected).Inc()
	}
}
