package errors

import (
	"strconv"

	kerrors "github.com/go-kratos/kratos/v2/errors"
)

// Point Service 错误码定义
// 错误码格式：SSMMEE (6位数字)
//   SS: 服务标识，Point 固定为 20
//   MM: 模块标识，按业务划分
//   EE: 模块内错误序号
//
// 模块划分：
//   01: 积分模块（参数与余额校验）
//   02: 存储模块
//   03: 并发模块
//   04: 异步命令模块

// 积分模块错误码 (200100-200199)
const (
	// ErrCodeInvalidUserID 无效的用户ID
	ErrCodeInvalidUserID = 200101
	// ErrCodeUserNotFound 用户积分记录不存在
	ErrCodeUserNotFound = 200102
	// ErrCodeInvalidAmount 金额不合法（非正充值、负数使用、超过单笔上限）
	ErrCodeInvalidAmount = 200103
	// ErrCodePointLimitExceeded 充值后余额超过上限
	ErrCodePointLimitExceeded = 200104
	// ErrCodeInsufficientBalance 余额不足
	ErrCodeInsufficientBalance = 200105
)

// 存储模块错误码 (200200-200299)
const (
	// ErrCodeStorageFailure 存储读写失败
	ErrCodeStorageFailure = 200201
)

// 并发模块错误码 (200300-200399)
const (
	// ErrCodeLockAcquireFailed 获取用户锁失败（等待被取消或超时）
	ErrCodeLockAcquireFailed = 200301
)

// 异步命令模块错误码 (200400-200499)
const (
	// ErrCodeInvalidCommand 无效的积分命令
	ErrCodeInvalidCommand = 200401
)

// 错误原因（对外稳定，传输层据此映射，不解析文本）
const (
	ReasonInvalidUserID       = "INVALID_USER_ID"
	ReasonUserNotFound        = "USER_NOT_FOUND"
	ReasonInvalidAmount       = "INVALID_AMOUNT"
	ReasonPointLimitExceeded  = "POINT_LIMIT_EXCEEDED"
	ReasonInsufficientBalance = "INSUFFICIENT_BALANCE"
	ReasonStorageFailure      = "STORAGE_FAILURE"
	ReasonLockAcquireFailed   = "LOCK_ACQUIRE_FAILED"
	ReasonInvalidCommand      = "INVALID_COMMAND"
)

type codeInfo struct {
	status int
	reason string
}

var codes = map[int]codeInfo{
	ErrCodeInvalidUserID:       {status: 400, reason: ReasonInvalidUserID},
	ErrCodeUserNotFound:        {status: 404, reason: ReasonUserNotFound},
	ErrCodeInvalidAmount:       {status: 400, reason: ReasonInvalidAmount},
	ErrCodePointLimitExceeded:  {status: 400, reason: ReasonPointLimitExceeded},
	ErrCodeInsufficientBalance: {status: 400, reason: ReasonInsufficientBalance},
	ErrCodeStorageFailure:      {status: 500, reason: ReasonStorageFailure},
	ErrCodeLockAcquireFailed:   {status: 503, reason: ReasonLockAcquireFailed},
	ErrCodeInvalidCommand:      {status: 400, reason: ReasonInvalidCommand},
}

// NewPointError 根据业务错误码创建 kratos 错误，业务码放在 metadata.code 中
func NewPointError(code int, format string, args ...interface{}) *kerrors.Error {
	info, ok := codes[code]
	if !ok {
		info = codeInfo{status: 500, reason: kerrors.UnknownReason}
	}
	return kerrors.Newf(info.status, info.reason, format, args...).
		WithMetadata(map[string]string{"code": strconv.Itoa(code)})
}

// BizCode 返回错误携带的业务错误码，非业务错误返回 0
func BizCode(err error) int {
	if err == nil {
		return 0
	}
	code, _ := strconv.Atoi(kerrors.FromError(err).Metadata["code"])
	return code
}
