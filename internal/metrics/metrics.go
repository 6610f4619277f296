package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PointMetrics 积分服务指标
type PointMetrics struct {
	// 操作相关指标
	OperationTotal    *prometheus.CounterVec   // 操作总数（按操作、结果）
	OperationDuration *prometheus.HistogramVec // 操作耗时（含等锁）

	// 用户锁相关指标
	LockWaitDuration prometheus.Histogram // 等锁耗时
	LockRegistrySize prometheus.Gauge     // 已创建的用户锁数量（只增不减，容量规划用）

	// 缓存相关指标
	CacheTotal *prometheus.CounterVec // 余额缓存读取（按 hit/miss/error）

	// 消息相关指标
	EventPublishTotal *prometheus.CounterVec // 积分事件发送（按结果）
	CommandTotal      *prometheus.CounterVec // 异步命令处理（按结果）

	// 对账相关指标
	ReconcileCheckedTotal  prometheus.Counter // 对账检查用户数
	ReconcileMismatchTotal prometheus.Counter // 对账不一致用户数
}

// NewPointMetrics 创建积分服务指标
func NewPointMetrics() *PointMetrics {
	return &PointMetrics{
		OperationTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "point_operation_total",
				Help: "Total number of point operations",
			},
			[]string{"operation", "result"}, // result: success 或错误原因
		),
		OperationDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "point_operation_duration_seconds",
				Help:    "Duration of point operations including lock wait",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),

		LockWaitDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "point_lock_wait_duration_seconds",
				Help:    "Time spent waiting for a per-user lock",
				Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
			},
		),
		LockRegistrySize: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "point_lock_registry_size",
				Help: "Number of per-user locks held by the registry",
			},
		),

		CacheTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "point_balance_cache_total",
				Help: "Balance cache lookups",
			},
			[]string{"result"}, // result: hit/miss/error
		),

		EventPublishTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "point_event_publish_total",
				Help: "Total number of point events published",
			},
			[]string{"result"},
		),
		CommandTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "point_command_total",
				Help: "Total number of async point commands handled",
			},
			[]string{"type", "result"},
		),

		ReconcileCheckedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "point_reconcile_checked_total",
				Help: "Total number of users checked by reconciliation",
			},
		),
		ReconcileMismatchTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "point_reconcile_mismatch_total",
				Help: "Total number of users whose balance disagrees with history",
			},
		),
	}
}

// 全局指标实例（promauto 注册到默认 registry，只能创建一次）
var (
	defaultMetrics *PointMetrics
	initOnce       sync.Once
)

// InitMetrics 初始化全局指标
func InitMetrics() {
	initOnce.Do(func() {
		defaultMetrics = NewPointMetrics()
	})
}

// GetMetrics 获取全局指标实例
func GetMetrics() *PointMetrics {
	InitMetrics()
	return defaultMetrics
}
