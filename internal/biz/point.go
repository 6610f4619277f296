package biz

import (
	"context"
	"time"

	"point-service/internal/constants"
	pointErrors "point-service/internal/errors"
	"point-service/internal/metrics"

	kerrors "github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
)

// PointUseCase 积分业务逻辑（余额变更引擎）
//
// 同一用户的读改写全部在该用户的锁内完成：读余额、校验、写余额、追加流水。
// 锁是唯一的一致性手段，两个存储之间没有数据库事务。
type PointUseCase struct {
	balances  BalanceStore
	histories HistoryLog
	locks     *LockRegistry
	publisher EventPublisher
	conf      *PointConfig
	log       *log.Helper
	metrics   *metrics.PointMetrics
}

// NewPointUseCase 创建积分 UseCase
func NewPointUseCase(
	balances BalanceStore,
	histories HistoryLog,
	locks *LockRegistry,
	publisher EventPublisher,
	conf *PointConfig,
	logger log.Logger,
) *PointUseCase {
	return &PointUseCase{
		balances:  balances,
		histories: histories,
		locks:     locks,
		publisher: publisher,
		conf:      conf,
		log:       log.NewHelper(logger),
		metrics:   metrics.GetMetrics(),
	}
}

// GetBalance 查询用户积分
func (uc *PointUseCase) GetBalance(ctx context.Context, userID int64) (_ *UserPoint, err error) {
	defer uc.observe(constants.OperationGetBalance, time.Now(), &err)

	if err := validateUserID(userID); err != nil {
		return nil, err
	}
	if uc.conf.LockQueries {
		unlock, err := uc.acquire(ctx, userID)
		if err != nil {
			return nil, err
		}
		defer unlock()
		ctx = context.WithoutCancel(ctx)
	}

	if cached, ok := uc.balances.(CachedBalanceReader); ok {
		user, err := cached.ReadCachedBalance(ctx, userID)
		if err != nil {
			uc.log.WithContext(ctx).Errorf("ReadCachedBalance failed: user_id=%d, error=%v", userID, err)
			return nil, pointErrors.ErrorStorageFailure("failed to read user point").WithCause(err)
		}
		if user != nil {
			return user, nil
		}
	}
	return uc.loadUser(ctx, userID)
}

// GetHistory 查询用户积分流水（按提交顺序）
func (uc *PointUseCase) GetHistory(ctx context.Context, userID int64) (_ []*PointHistory, err error) {
	defer uc.observe(constants.OperationGetHistory, time.Now(), &err)

	if err := validateUserID(userID); err != nil {
		return nil, err
	}
	if uc.conf.LockQueries {
		unlock, err := uc.acquire(ctx, userID)
		if err != nil {
			return nil, err
		}
		defer unlock()
		ctx = context.WithoutCancel(ctx)
	}

	user, err := uc.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	histories, err := uc.histories.ReadAll(ctx, user.UserID)
	if err != nil {
		uc.log.WithContext(ctx).Errorf("ReadAll failed: user_id=%d, error=%v", userID, err)
		return nil, pointErrors.ErrorStorageFailure("failed to read point history").WithCause(err)
	}
	if histories == nil {
		histories = []*PointHistory{}
	}
	return histories, nil
}

// Open 开户：为新用户创建 0 余额记录，已存在时原样返回
func (uc *PointUseCase) Open(ctx context.Context, userID int64) (_ *UserPoint, err error) {
	defer uc.observe(constants.OperationOpen, time.Now(), &err)

	if err := validateUserID(userID); err != nil {
		return nil, err
	}
	unlock, err := uc.acquire(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer unlock()
	ctx = context.WithoutCancel(ctx)

	user, err := uc.balances.ReadBalance(ctx, userID)
	if err != nil {
		uc.log.WithContext(ctx).Errorf("ReadBalance failed: user_id=%d, error=%v", userID, err)
		return nil, pointErrors.ErrorStorageFailure("failed to read user point").WithCause(err)
	}
	if user != nil {
		return user, nil
	}
	return uc.createUser(ctx, userID)
}

// Charge 充值
//   - amount <= 0: INVALID_AMOUNT
//   - amount > MaxPoint: INVALID_AMOUNT（单笔上限）
//   - 充值后余额 > MaxPoint: POINT_LIMIT_EXCEEDED
func (uc *PointUseCase) Charge(ctx context.Context, userID, amount int64) (_ *UserPoint, err error) {
	defer uc.observe(constants.OperationCharge, time.Now(), &err)

	if err := validateUserID(userID); err != nil {
		return nil, err
	}
	unlock, err := uc.acquire(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer unlock()
	// 拿到锁之后提交过程不再响应取消
	ctx = context.WithoutCancel(ctx)

	user, err := uc.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if amount <= 0 {
		return nil, pointErrors.ErrorInvalidAmount("charge amount must be positive: %d", amount)
	}
	if amount > uc.conf.MaxPoint {
		return nil, pointErrors.ErrorInvalidAmount("charge amount %d exceeds single charge limit %d", amount, uc.conf.MaxPoint)
	}
	newBalance := user.Balance + amount
	if newBalance > uc.conf.MaxPoint {
		return nil, pointErrors.ErrorPointLimitExceeded("balance %d exceeds limit %d", newBalance, uc.conf.MaxPoint)
	}

	updated, history, err := uc.commit(ctx, user, newBalance, TransactionCharge)
	if err != nil {
		return nil, err
	}
	unlock()

	uc.publish(ctx, history, amount)
	return updated, nil
}

// Spend 使用
//   - amount < 0: INVALID_AMOUNT
//   - 使用后余额 < 0: INSUFFICIENT_BALANCE
func (uc *PointUseCase) Spend(ctx context.Context, userID, amount int64) (_ *UserPoint, err error) {
	defer uc.observe(constants.OperationSpend, time.Now(), &err)

	if err := validateUserID(userID); err != nil {
		return nil, err
	}
	unlock, err := uc.acquire(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer unlock()
	ctx = context.WithoutCancel(ctx)

	user, err := uc.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if amount < 0 {
		return nil, pointErrors.ErrorInvalidAmount("spend amount must not be negative: %d", amount)
	}
	newBalance := user.Balance - amount
	if newBalance < 0 {
		return nil, pointErrors.ErrorInsufficientBalance("balance %d is less than spend amount %d", user.Balance, amount)
	}

	updated, history, err := uc.commit(ctx, user, newBalance, TransactionUse)
	if err != nil {
		return nil, err
	}
	unlock()

	uc.publish(ctx, history, amount)
	return updated, nil
}

func validateUserID(userID int64) error {
	if userID < 0 {
		return pointErrors.ErrorInvalidUserID("invalid user id: %d", userID)
	}
	return nil
}

func (uc *PointUseCase) acquire(ctx context.Context, userID int64) (func(), error) {
	unlock, err := uc.locks.Lock(ctx, userID)
	if err != nil {
		uc.log.WithContext(ctx).Warnf("Failed to acquire user lock: user_id=%d, error=%v", userID, err)
		return nil, pointErrors.ErrorLockAcquireFailed("failed to acquire lock for user %d", userID).WithCause(err)
	}
	return unlock, nil
}

// loadUser 存在性校验，读主存储，必须在用户锁内调用
func (uc *PointUseCase) loadUser(ctx context.Context, userID int64) (*UserPoint, error) {
	user, err := uc.balances.ReadBalance(ctx, userID)
	if err != nil {
		uc.log.WithContext(ctx).Errorf("ReadBalance failed: user_id=%d, error=%v", userID, err)
		return nil, pointErrors.ErrorStorageFailure("failed to read user point").WithCause(err)
	}
	if user != nil {
		return user, nil
	}
	if !uc.conf.AutoCreate {
		return nil, pointErrors.ErrorUserNotFound("user %d not found", userID)
	}
	return uc.createUser(ctx, userID)
}

func (uc *PointUseCase) createUser(ctx context.Context, userID int64) (*UserPoint, error) {
	user, err := uc.balances.WriteBalance(ctx, userID, 0)
	if err != nil {
		uc.log.WithContext(ctx).Errorf("WriteBalance failed when creating user: user_id=%d, error=%v", userID, err)
		return nil, pointErrors.ErrorStorageFailure("failed to create user point").WithCause(err)
	}
	uc.log.WithContext(ctx).Infof("User point created: user_id=%d", userID)
	return user, nil
}

// commit 写余额后追加流水；流水追加失败时恢复原余额，保证两者同时生效或都不生效
func (uc *PointUseCase) commit(ctx context.Context, current *UserPoint, newBalance int64, txType TransactionType) (*UserPoint, *PointHistory, error) {
	updated, err := uc.balances.WriteBalance(ctx, current.UserID, newBalance)
	if err != nil {
		uc.log.WithContext(ctx).Errorf("WriteBalance failed: user_id=%d, type=%s, error=%v", current.UserID, txType, err)
		return nil, nil, pointErrors.ErrorStorageFailure("failed to write user point").WithCause(err)
	}

	history, err := uc.histories.Append(ctx, updated.UserID, updated.Balance, txType, updated.UpdatedAt)
	if err != nil {
		uc.log.WithContext(ctx).Errorf("Append history failed: user_id=%d, type=%s, error=%v", current.UserID, txType, err)
		if _, rerr := uc.balances.WriteBalance(ctx, current.UserID, current.Balance); rerr != nil {
			uc.log.WithContext(ctx).Errorf("Restore balance failed: user_id=%d, balance=%d, error=%v", current.UserID, current.Balance, rerr)
		}
		return nil, nil, pointErrors.ErrorStorageFailure("failed to append point history").WithCause(err)
	}

	return updated, history, nil
}

// publish 发送积分事件，失败只记录日志，不影响已提交的操作
func (uc *PointUseCase) publish(ctx context.Context, history *PointHistory, amount int64) {
	if uc.publisher == nil {
		return
	}
	event := &PointEvent{
		EventID:   uuid.New().String(),
		HistoryID: history.ID,
		UserID:    history.UserID,
		Type:      history.Type,
		Amount:    amount,
		Balance:   history.Amount,
		Timestamp: history.Timestamp,
	}
	if err := uc.publisher.Publish(ctx, event); err != nil {
		uc.log.WithContext(ctx).Warnf("Publish point event failed: user_id=%d, history_id=%d, error=%v", history.UserID, history.ID, err)
		if uc.metrics != nil {
			uc.metrics.EventPublishTotal.WithLabelValues(constants.ResultFailed).Inc()
		}
		return
	}
	if uc.metrics != nil {
		uc.metrics.EventPublishTotal.WithLabelValues(constants.ResultSuccess).Inc()
	}
}

func (uc *PointUseCase) observe(operation string, start time.Time, errp *error) {
	if uc.metrics == nil {
		return
	}
	result := constants.ResultSuccess
	if *errp != nil {
		result = kerrors.Reason(*errp)
	}
	uc.metrics.OperationTotal.WithLabelValues(operation, result).Inc()
	uc.metrics.OperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
