package errors

import (
	kerrors "github.com/go-kratos/kratos/v2/errors"
)

// 以下构造函数与判定函数沿用 protoc-gen-go-errors 生成代码的形式

func ErrorInvalidUserID(format string, args ...interface{}) *kerrors.Error {
	return NewPointError(ErrCodeInvalidUserID, format, args...)
}

func IsInvalidUserID(err error) bool {
	return hasReason(err, ReasonInvalidUserID)
}

func ErrorUserNotFound(format string, args ...interface{}) *kerrors.Error {
	return NewPointError(ErrCodeUserNotFound, format, args...)
}

func IsUserNotFound(err error) bool {
	return hasReason(err, ReasonUserNotFound)
}

func ErrorInvalidAmount(format string, args ...interface{}) *kerrors.Error {
	return NewPointError(ErrCodeInvalidAmount, format, args...)
}

func IsInvalidAmount(err error) bool {
	return hasReason(err, ReasonInvalidAmount)
}

func ErrorPointLimitExceeded(format string, args ...interface{}) *kerrors.Error {
	return NewPointError(ErrCodePointLimitExceeded, format, args...)
}

func IsPointLimitExceeded(err error) bool {
	return hasReason(err, ReasonPointLimitExceeded)
}

func ErrorInsufficientBalance(format string, args ...interface{}) *kerrors.Error {
	return NewPointError(ErrCodeInsufficientBalance, format, args...)
}

func IsInsufficientBalance(err error) bool {
	return hasReason(err, ReasonInsufficientBalance)
}

func ErrorStorageFailure(format string, args ...interface{}) *kerrors.Error {
	return NewPointError(ErrCodeStorageFailure, format, args...)
}

func IsStorageFailure(err error) bool {
	return hasReason(err, ReasonStorageFailure)
}

func ErrorLockAcquireFailed(format string, args ...interface{}) *kerrors.Error {
	return NewPointError(ErrCodeLockAcquireFailed, format, args...)
}

func IsLockAcquireFailed(err error) bool {
	return hasReason(err, ReasonLockAcquireFailed)
}

func ErrorInvalidCommand(format string, args ...interface{}) *kerrors.Error {
	return NewPointError(ErrCodeInvalidCommand, format, args...)
}

func IsInvalidCommand(err error) bool {
	return hasReason(err, ReasonInvalidCommand)
}

// IsRetryable 存储失败与锁等待失败可以重试，校验类错误重试无意义
func IsRetryable(err error) bool {
	return IsStorageFailure(err) || IsLockAcquireFailed(err)
}

func hasReason(err error, reason string) bool {
	if err == nil {
		return false
	}
	return kerrors.Reason(err) == reason
}
