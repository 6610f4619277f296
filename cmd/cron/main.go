package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"point-service/internal/conf"
	"point-service/internal/constants"
	"point-service/internal/data"

	"github.com/gaoyong06/go-pkg/logger"
	"github.com/go-kratos/kratos/v2/config"
	"github.com/go-kratos/kratos/v2/config/file"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/robfig/cron/v3"
	_ "go.uber.org/automaxprocs"
)

var (
	flagconf string
	flagonce bool
)

func init() {
	flag.StringVar(&flagconf, "conf", "../../configs/config.yaml", "config path, eg: -conf config.yaml")
	flag.BoolVar(&flagonce, "once", false, "run reconciliation once and exit")
}

func main() {
	flag.Parse()

	// 初始化配置
	c := config.New(
		config.WithSource(
			file.NewSource(flagconf),
		),
	)
	defer c.Close()

	if err := c.Load(); err != nil {
		panic(err)
	}

	var bc conf.Bootstrap
	if err := c.Scan(&bc); err != nil {
		panic(err)
	}

	// 初始化日志 (使用 go-pkg/logger)
	logConfig := &logger.Config{
		Level:         "info",
		Format:        "json",
		Output:        "stdout",
		FilePath:      "logs/point-cron.log",
		MaxSize:       100,
		MaxAge:        30,
		MaxBackups:    10,
		Compress:      true,
		EnableConsole: true,
	}
	if bc.Log != nil && bc.Log.Level != "" {
		logConfig.Level = bc.Log.Level
	}

	loggerInstance := logger.NewLogger(logConfig)

	// 添加基本字段
	loggerInstance = log.With(loggerInstance,
		"ts", log.DefaultTimestamp,
		"caller", log.DefaultCaller,
		"service.name", "point-cron",
	)

	logHelper := log.NewHelper(loggerInstance)

	// 对账需要与服务进程共享存储
	if err := data.CheckSharedDriver(bc.Data); err != nil {
		panic(err)
	}

	// 初始化应用
	app, cleanup, err := wireApp(&bc, loggerInstance)
	if err != nil {
		panic(err)
	}
	defer cleanup()

	spec := constants.DefaultReconcileSpec
	if bc.Cron != nil && bc.Cron.ReconcileSpec != "" {
		spec = bc.Cron.ReconcileSpec
	}

	runReconcile := func() {
		logHelper.Info("[CRON] Starting balance reconciliation...")
		report, err := app.reconcileUseCase.Reconcile(context.Background())
		if err != nil {
			logHelper.Errorf("[CRON] Error reconciling balances: %v", err)
			return
		}
		if report.Skipped {
			logHelper.Info("[CRON] Reconciliation skipped, another instance is running")
			return
		}
		logHelper.Infof("[CRON] Reconciliation completed: checked=%d, mismatched=%d", report.Checked, len(report.Mismatched))
		if n := len(report.Mismatched); n > 0 && n <= 10 {
			logHelper.Warnf("[CRON] Mismatched users: %v", report.Mismatched)
		} else if n > 10 {
			logHelper.Warnf("[CRON] Mismatched users (first 10): %v", report.Mismatched[:10])
		}
	}

	if flagonce {
		runReconcile()
		return
	}

	// 创建定时任务调度器（支持秒级调度）
	cronScheduler := cron.New(cron.WithSeconds())

	_, err = cronScheduler.AddFunc(spec, runReconcile)
	if err != nil {
		logHelper.Errorf("Failed to add reconcile job: %v", err)
		return
	}

	// 启动定时任务
	cronScheduler.Start()
	logHelper.Info("========================================")
	logHelper.Info("Cron jobs started successfully")
	logHelper.Info("Scheduled jobs:")
	logHelper.Infof("  - Balance reconciliation: %s", spec)
	logHelper.Info("========================================")

	// 优雅退出
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logHelper.Info("Shutting down gracefully...")

	// 停止定时任务
	ctx := cronScheduler.Stop()
	select {
	case <-ctx.Done():
		logHelper.Info("Cron jobs stopped gracefully")
	case <-time.After(5 * time.Second):
		logHelper.Info("Cron jobs forced to stop after timeout")
	}
}
