//go:build wireinject
// +build wireinject

package main

import (
	"point-service/internal/biz"
	"point-service/internal/conf"
	"point-service/internal/data"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/wire"
)

// CronApp Cron 应用结构
type CronApp struct {
	reconcileUseCase *biz.ReconcileUseCase
}

// wireApp 初始化应用
func wireApp(*conf.Bootstrap, log.Logger) (*CronApp, func(), error) {
	panic(wire.Build(
		// Data 层（需要 conf.Data 和 logger）
		wire.FieldsOf(new(*conf.Bootstrap), "Data"),
		data.ProviderSet,

		// Biz 层
		biz.ProviderSet,

		// App 结构
		wire.Struct(new(CronApp), "*"),
	))
}
