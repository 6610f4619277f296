package biz

import (
	"time"

	"point-service/internal/conf"
	"point-service/internal/constants"
)

// PointConfig 积分配置
type PointConfig struct {
	MaxPoint    int64 // 余额上限，同时是单笔充值上限
	LockQueries bool  // 查询是否也加用户锁（读己之写）
	AutoCreate  bool  // 用户不存在时是否自动创建 0 余额记录
}

// NewPointConfig 从配置创建 PointConfig
func NewPointConfig(c *conf.Bootstrap) *PointConfig {
	config := &PointConfig{
		MaxPoint:    constants.MaxPoint, // 默认值
		LockQueries: true,               // 默认值
	}
	if c != nil && c.Point != nil {
		// 只允许调低上限，余额不变式的上界固定为 constants.MaxPoint
		if c.Point.MaxPoint > 0 && c.Point.MaxPoint < constants.MaxPoint {
			config.MaxPoint = c.Point.MaxPoint
		}
		if c.Point.LockQueries != nil {
			config.LockQueries = *c.Point.LockQueries
		}
		config.AutoCreate = c.Point.AutoCreate
	}
	return config
}

// ReconcileConfig 对账配置
type ReconcileConfig struct {
	ConfirmDelay time.Duration // 发现不一致后等待多久复核，避开正在提交的操作
	LockExpiry   time.Duration // 对账任务锁过期时间，不小于 Timeout
	Timeout      time.Duration // 单次对账最长执行时间
}

// NewReconcileConfig 从配置创建 ReconcileConfig
func NewReconcileConfig(c *conf.Bootstrap) *ReconcileConfig {
	config := &ReconcileConfig{
		ConfirmDelay: 500 * time.Millisecond,
		LockExpiry:   15 * time.Minute,
		Timeout:      10 * time.Minute,
	}
	if c != nil && c.Cron != nil {
		if c.Cron.ConfirmDelay != nil {
			config.ConfirmDelay = c.Cron.ConfirmDelay.AsDuration()
		}
		if d := c.Cron.LockExpiry.AsDuration(); d > 0 {
			config.LockExpiry = d
		}
		if d := c.Cron.Timeout.AsDuration(); d > 0 {
			config.Timeout = d
		}
	}
	// 任务锁必须活得比任务久，否则执行中途过期会让另一个副本同时对账
	if config.LockExpiry < config.Timeout+time.Minute {
		config.LockExpiry = config.Timeout + time.Minute
	}
	return config
}
