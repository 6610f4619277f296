package data

import (
	"fmt"

	"point-service/internal/biz"
	"point-service/internal/conf"
	"point-service/internal/constants"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v8"
)

// NewBalanceStore 按 driver 选择余额存储，配置了 Redis 时外加缓存
func NewBalanceStore(d *Data, logger log.Logger) biz.BalanceStore {
	var store biz.BalanceStore
	switch d.driver {
	case constants.DriverMySQL, constants.DriverSQLite:
		store = newUserPointRepo(d.db, logger)
	case constants.DriverBolt:
		store = d.bolt
	default:
		store = d.mem
	}

	if d.rdb != nil {
		ttl := defaultCacheTTL
		if d.conf.Redis != nil && d.conf.Redis.CacheTTL != nil {
			ttl = d.conf.Redis.CacheTTL.AsDuration()
		}
		return newCachedBalanceStore(store, d.rdb, ttl, logger)
	}
	return store
}

// NewHistoryLog 按 driver 选择流水存储
func NewHistoryLog(d *Data, logger log.Logger) biz.HistoryLog {
	switch d.driver {
	case constants.DriverMySQL, constants.DriverSQLite:
		return newPointHistoryRepo(d.db, logger)
	case constants.DriverBolt:
		return d.bolt
	default:
		return d.mem
	}
}

// NewUserLister 对账用的用户列表，直接读主存储，不经过缓存
func NewUserLister(d *Data, logger log.Logger) biz.UserLister {
	switch d.driver {
	case constants.DriverMySQL, constants.DriverSQLite:
		return newUserPointRepo(d.db, logger)
	case constants.DriverBolt:
		return d.bolt
	default:
		return d.mem
	}
}

// NewEventPublisher 启用 RocketMQ 时发送积分事件，否则丢弃
func NewEventPublisher(d *Data, logger log.Logger) biz.EventPublisher {
	if d.mq == nil {
		return noopEventPublisher{}
	}
	topic := constants.DefaultEventTopic
	if d.conf.Rocketmq != nil && d.conf.Rocketmq.EventTopic != "" {
		topic = d.conf.Rocketmq.EventTopic
	}
	return newRocketMQEventPublisher(d.mq, topic, logger)
}

// NewCommandDeduper 有 Redis 时跨副本去重，否则进程内去重
func NewCommandDeduper(d *Data, logger log.Logger) biz.CommandDeduper {
	ttl := defaultDedupeTTL
	if d.conf.Redis != nil && d.conf.Redis.DedupeTTL != nil {
		ttl = d.conf.Redis.DedupeTTL.AsDuration()
	}
	if d.rdb == nil {
		log.NewHelper(logger).Warn("redis is not configured, command dedupe falls back to in-process memory")
		return newMemoryCommandDeduper(ttl)
	}
	return newRedisCommandDeduper(d.rdb, ttl)
}

// NewReconcileLocker 有 Redis 时使用 redsync 分布式锁，否则进程内锁
func NewReconcileLocker(d *Data, c *biz.ReconcileConfig, logger log.Logger) biz.ReconcileLocker {
	if d.rdb == nil {
		return newLocalReconcileLocker()
	}
	rs := redsync.New(goredis.NewPool(d.rdb))
	return newRedsyncReconcileLocker(rs, c.LockExpiry, logger)
}

// CheckSharedDriver 独立进程（如对账 cron）只能访问能被多个进程共享的存储。
// bolt 文件被服务进程独占，memory 只存在于服务进程内。
func CheckSharedDriver(c *conf.Data) error {
	driver := constants.DriverMemory
	if c != nil && c.Driver != "" {
		driver = c.Driver
	}
	switch driver {
	case constants.DriverMySQL, constants.DriverSQLite:
		return nil
	default:
		return fmt.Errorf("data driver %q is private to the server process, use mysql or sqlite", driver)
	}
}
