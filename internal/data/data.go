package data

import (
	"context"
	"fmt"
	"time"

	"point-service/internal/conf"
	"point-service/internal/constants"
	"point-service/internal/data/model"

	"github.com/apache/rocketmq-client-go/v2"
	"github.com/apache/rocketmq-client-go/v2/primitive"
	"github.com/apache/rocketmq-client-go/v2/producer"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-redis/redis/v8"
	"github.com/google/wire"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// ProviderSet is data providers.
var ProviderSet = wire.NewSet(
	NewData,
	NewBalanceStore,
	NewHistoryLog,
	NewUserLister,
	NewEventPublisher,
	NewCommandDeduper,
	NewReconcileLocker,
)

// Data 数据层结构体
//
// 按 driver 只初始化一种主存储：db（mysql/sqlite）、bolt 或 mem。
// rdb 与 mq 为可选组件，未配置时为 nil。
type Data struct {
	driver string
	db     *gorm.DB
	bolt   *BoltStore
	mem    *Memory
	rdb    *redis.Client
	mq     messageSender
	conf   *conf.Data
}

// messageSender rocketmq.Producer 中用到的部分
type messageSender interface {
	SendSync(ctx context.Context, msgs ...*primitive.Message) (*primitive.SendResult, error)
}

// NewDB 创建数据库连接
func NewDB(c *conf.Data) (*gorm.DB, error) {
	if c == nil || c.Database == nil || c.Database.Source == "" {
		return nil, fmt.Errorf("database config is nil")
	}

	var dialector gorm.Dialector
	switch c.Driver {
	case constants.DriverSQLite:
		dialector = sqlite.Open(c.Database.Source)
	default:
		dialector = mysql.Open(c.Database.Source)
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, err
	}

	if c.Database.AutoMigrate {
		if err := db.AutoMigrate(&model.UserPoint{}, &model.PointHistory{}); err != nil {
			return nil, fmt.Errorf("auto migrate failed: %w", err)
		}
	}
	return db, nil
}

// NewRedis 创建 Redis 连接
func NewRedis(c *conf.Data) (*redis.Client, error) {
	if c == nil || c.Redis == nil {
		return nil, fmt.Errorf("redis config is nil")
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         c.Redis.Addr,
		Password:     c.Redis.Password,
		DB:           c.Redis.DB,
		ReadTimeout:  c.Redis.ReadTimeout.AsDuration(),
		WriteTimeout: c.Redis.WriteTimeout.AsDuration(),
	})

	// 测试连接
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}

	return rdb, nil
}

// NewProducer 创建并启动 RocketMQ 生产者
func NewProducer(c *conf.Data) (rocketmq.Producer, error) {
	if c == nil || c.Rocketmq == nil {
		return nil, fmt.Errorf("rocketmq config is nil")
	}
	groupName := c.Rocketmq.GroupName
	if groupName == "" {
		groupName = constants.DefaultGroupName
	}

	p, err := rocketmq.NewProducer(
		producer.WithNsResolver(primitive.NewPassthroughResolver(c.Rocketmq.NameServers)),
		producer.WithGroupName(groupName),
		producer.WithRetry(int(c.Rocketmq.RetryTimes)),
	)
	if err != nil {
		return nil, err
	}
	if err := p.Start(); err != nil {
		return nil, err
	}
	return p, nil
}

// NewData 创建数据层实例
func NewData(c *conf.Data, logger log.Logger) (*Data, func(), error) {
	helper := log.NewHelper(logger)
	if c == nil {
		c = &conf.Data{}
	}
	d := &Data{driver: c.Driver, conf: c}
	if d.driver == "" {
		d.driver = constants.DriverMemory
	}

	var closers []func()
	cleanup := func() {
		helper.Info("closing the data resources")
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	switch d.driver {
	case constants.DriverMySQL, constants.DriverSQLite:
		db, err := NewDB(c)
		if err != nil {
			return nil, nil, err
		}
		d.db = db
		closers = append(closers, func() {
			if sqlDB, err := db.DB(); err == nil {
				sqlDB.Close()
			}
		})
	case constants.DriverBolt:
		path := "data/point.db"
		if c.Bolt != nil && c.Bolt.Path != "" {
			path = c.Bolt.Path
		}
		store, err := NewBoltStore(path)
		if err != nil {
			return nil, nil, fmt.Errorf("open bolt store %s: %w", path, err)
		}
		d.bolt = store
		closers = append(closers, func() {
			if err := store.Close(); err != nil {
				helper.Errorf("failed to close bolt: %v", err)
			}
		})
	case constants.DriverMemory:
		d.mem = NewMemory()
	default:
		return nil, nil, fmt.Errorf("unknown data driver: %s", c.Driver)
	}

	if c.Redis != nil && c.Redis.Addr != "" {
		rdb, err := NewRedis(c)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("connect redis %s: %w", c.Redis.Addr, err)
		}
		d.rdb = rdb
		closers = append(closers, func() {
			if err := rdb.Close(); err != nil {
				helper.Errorf("failed to close redis: %v", err)
			}
		})
	}

	if c.Rocketmq != nil && c.Rocketmq.Enabled {
		p, err := NewProducer(c)
		if err != nil {
			// MQ 不可用时只关闭事件发送，不影响积分主流程
			helper.Errorf("init rocketmq producer error: %v", err)
		} else {
			d.mq = p
			closers = append(closers, func() {
				if err := p.Shutdown(); err != nil {
					helper.Errorf("failed to shutdown producer: %v", err)
				}
			})
		}
	}

	helper.Infof("data layer initialized: driver=%s, redis=%t, rocketmq=%t", d.driver, d.rdb != nil, d.mq != nil)
	return d, cleanup, nil
}
