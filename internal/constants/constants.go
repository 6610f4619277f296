package constants

// 积分上限常量
const (
	// MaxPoint 单用户积分余额上限，也是单笔充值上限
	MaxPoint int64 = 1000000
)

// 存储驱动常量
const (
	// DriverMySQL MySQL（gorm）
	DriverMySQL = "mysql"
	// DriverSQLite SQLite（gorm），用于本地开发
	DriverSQLite = "sqlite"
	// DriverBolt BoltDB 嵌入式存储
	DriverBolt = "bolt"
	// DriverMemory 进程内存储
	DriverMemory = "memory"
)

// Redis Key 前缀常量
const (
	// RedisKeyPointBalance 积分余额缓存 key 前缀
	RedisKeyPointBalance = "point:balance:"
	// RedisKeyPointCommand 异步积分命令去重 key 前缀
	RedisKeyPointCommand = "point:command:"
	// RedisKeyReconcileLock 对账任务锁 key
	RedisKeyReconcileLock = "point:reconcile:lock"
)

// 操作名常量（用于指标与日志）
const (
	OperationCharge     = "charge"
	OperationSpend      = "spend"
	OperationGetBalance = "get_balance"
	OperationGetHistory = "get_history"
	OperationOpen       = "open"
)

// 指标结果常量
const (
	// ResultSuccess 成功
	ResultSuccess = "success"
	// ResultFailed 失败
	ResultFailed = "failed"
	// ResultDuplicate 重复命令
	ResultDuplicate = "duplicate"
	// ResultRejected 校验失败，不重试
	ResultRejected = "rejected"
	// ResultRetry 稍后重试
	ResultRetry = "retry"
)

// 缓存结果常量
const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"
)

// RocketMQ 默认配置
const (
	// DefaultEventTopic 积分变动事件 topic
	DefaultEventTopic = "point_event_topic"
	// DefaultCommandTopic 异步积分命令 topic
	DefaultCommandTopic = "point_command_topic"
	// DefaultGroupName 默认消费组/生产组
	DefaultGroupName = "point-service"
)

// 定时任务默认配置
const (
	// DefaultReconcileSpec 默认每 10 分钟对账一次（秒级 cron 表达式）
	DefaultReconcileSpec = "0 */10 * * * *"
)
