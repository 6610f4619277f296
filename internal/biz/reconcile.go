package biz

import (
	"context"
	"time"

	"point-service/internal/constants"
	pointErrors "point-service/internal/errors"
	"point-service/internal/metrics"

	"github.com/go-kratos/kratos/v2/log"
)

// ReconcileLocker 对账任务锁，多副本部署时只允许一个实例执行
type ReconcileLocker interface {
	// TryLock 不等待；ok 为 false 表示其他实例正在执行
	TryLock(ctx context.Context, name string) (unlock func(), ok bool, err error)
}

// ReconcileReport 对账结果
type ReconcileReport struct {
	Checked    int
	Mismatched []int64
	Skipped    bool // 其他实例持有任务锁
}

// ReconcileUseCase 余额与流水对账
//
// 每个用户最后一条流水的 Amount 应等于当前余额，没有流水时余额应为 0。
// 对账不持有用户锁，首次检查不一致的用户会在 ConfirmDelay 之后复核一次，
// 两次都不一致才上报。
type ReconcileUseCase struct {
	users     UserLister
	balances  BalanceStore
	histories HistoryLog
	locker    ReconcileLocker
	conf      *ReconcileConfig
	log       *log.Helper
	metrics   *metrics.PointMetrics
}

// NewReconcileUseCase 创建对账 UseCase
func NewReconcileUseCase(
	users UserLister,
	balances BalanceStore,
	histories HistoryLog,
	locker ReconcileLocker,
	conf *ReconcileConfig,
	logger log.Logger,
) *ReconcileUseCase {
	return &ReconcileUseCase{
		users:     users,
		balances:  balances,
		histories: histories,
		locker:    locker,
		conf:      conf,
		log:       log.NewHelper(logger),
		metrics:   metrics.GetMetrics(),
	}
}

// Reconcile 执行一次全量对账，执行时间受 Timeout 限制
func (uc *ReconcileUseCase) Reconcile(ctx context.Context) (*ReconcileReport, error) {
	unlock, ok, err := uc.locker.TryLock(ctx, constants.RedisKeyReconcileLock)
	if err != nil {
		return nil, pointErrors.ErrorLockAcquireFailed("failed to acquire reconcile lock").WithCause(err)
	}
	if !ok {
		uc.log.WithContext(ctx).Info("Reconcile skipped: another instance holds the lock")
		return &ReconcileReport{Skipped: true}, nil
	}
	defer unlock()

	if uc.conf.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, uc.conf.Timeout)
		defer cancel()
	}

	userIDs, err := uc.users.ListUserIDs(ctx)
	if err != nil {
		return nil, pointErrors.ErrorStorageFailure("failed to list users").WithCause(err)
	}

	report := &ReconcileReport{}
	var suspects []int64
	for _, userID := range userIDs {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		consistent, err := uc.check(ctx, userID)
		if err != nil {
			return report, err
		}
		report.Checked++
		if !consistent {
			suspects = append(suspects, userID)
		}
	}
	if uc.metrics != nil {
		uc.metrics.ReconcileCheckedTotal.Add(float64(report.Checked))
	}

	if len(suspects) > 0 && uc.conf.ConfirmDelay > 0 {
		select {
		case <-ctx.Done():
			return report, ctx.Err()
		case <-time.After(uc.conf.ConfirmDelay):
		}
	}
	for _, userID := range suspects {
		consistent, err := uc.check(ctx, userID)
		if err != nil {
			return report, err
		}
		if consistent {
			continue
		}
		report.Mismatched = append(report.Mismatched, userID)
		uc.log.WithContext(ctx).Errorf("Balance mismatch: user_id=%d", userID)
	}
	if uc.metrics != nil {
		uc.metrics.ReconcileMismatchTotal.Add(float64(len(report.Mismatched)))
	}

	uc.log.WithContext(ctx).Infof("Reconcile finished: checked=%d, mismatched=%d", report.Checked, len(report.Mismatched))
	return report, nil
}

func (uc *ReconcileUseCase) check(ctx context.Context, userID int64) (bool, error) {
	user, err := uc.balances.ReadBalance(ctx, userID)
	if err != nil {
		return false, pointErrors.ErrorStorageFailure("failed to read user point").WithCause(err)
	}
	if user == nil {
		// 列出之后被删除，不属于不一致
		return true, nil
	}
	histories, err := uc.histories.ReadAll(ctx, userID)
	if err != nil {
		return false, pointErrors.ErrorStorageFailure("failed to read point history").WithCause(err)
	}

	var expected int64
	if n := len(histories); n > 0 {
		expected = histories[n-1].Amount
	}
	if expected != user.Balance {
		uc.log.WithContext(ctx).Warnf("Balance disagrees with history: user_id=%d, balance=%d, last_history=%d",
			userID, user.Balance, expected)
		return false, nil
	}
	return true, nil
}
