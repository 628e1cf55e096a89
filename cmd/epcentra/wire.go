//go:build wireinject
// +build wireinject

package main

import (
	"github.com/go-arcade/epcentra/internal/engine/bootstrap"
	"github.com/go-arcade/epcentra/internal/engine/config"
	"github.com/go-arcade/epcentra/internal/engine/repo"
	"github.com/go-arcade/epcentra/internal/engine/router"
	"github.com/go-arcade/epcentra/internal/engine/service"
	"github.com/go-arcade/epcentra/pkg/cache"
	"github.com/go-arcade/epcentra/pkg/database"
	"github.com/go-arcade/epcentra/pkg/log"
	"github.com/go-arcade/epcentra/pkg/metrics"
	"github.com/google/wire"
)

func initApp(configPath string) (*bootstrap.App, func(), error) {
	panic(wire.Build(
		// 配置层
		config.ProviderSet,
		// 日志
		log.ProviderSet,
		// 数据与缓存
		database.ProviderSet,
		cache.ProviderSet,
		// 指标
		metrics.ProviderSet,
		// 仓储层
		repo.ProviderSet,
		// 服务层
		service.ProviderSet,
		// 路由层
		router.ProviderSet,
		// 应用层
		bootstrap.NewApp,
	))
}
