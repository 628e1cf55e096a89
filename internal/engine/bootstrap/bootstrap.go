// Copyright 2025 Arcade Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package bootstrap

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-arcade/epcentra/internal/engine/config"
	"github.com/go-arcade/epcentra/internal/engine/model"
	"github.com/go-arcade/epcentra/internal/engine/router"
	"github.com/go-arcade/epcentra/pkg/database"
	"github.com/go-arcade/epcentra/pkg/log"
	"github.com/go-arcade/epcentra/pkg/metrics"
	"github.com/go-arcade/epcentra/pkg/trace"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type App struct {
	HttpApp       *fiber.App
	MetricsServer *metrics.Server
	Logger        *zap.Logger
	AppConf       *config.AppConfig
}

// InitAppFunc init app function type
type InitAppFunc func(configPath string) (*App, func(), error)

func NewApp(
	rt *router.Router,
	logger *zap.Logger,
	metricsServer *metrics.Server,
	db database.IDatabase,
	traceConf trace.Conf,
	appConf *config.AppConfig,
) (*App, func(), error) {
	if appConf.Database.AutoMigrate {
		if err := db.Database().AutoMigrate(model.Tables()...); err != nil {
			return nil, nil, fmt.Errorf("auto migrate: %w", err)
		}
		log.Info("database schema migrated")
	}

	_, shutdownTracer, err := trace.InitTracerProvider(context.Background(), traceConf)
	if err != nil {
		return nil, nil, err
	}

	httpApp := rt.Router()

	cleanup := func() {
		// stop metrics server
		if metricsServer != nil {
			log.Info("Shutting down metrics server...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := metricsServer.Stop(shutdownCtx); err != nil {
				log.Errorw("Failed to stop metrics server", "error", err)
			}
		}

		shutdownTracer()
		_ = log.Sync()
	}

	app := &App{
		HttpApp:       httpApp,
		MetricsServer: metricsServer,
		Logger:        logger,
		AppConf:       appConf,
	}
	return app, cleanup, nil
}

// Bootstrap init app, return App instance and cleanup function
func Bootstrap(configFile string, initApp InitAppFunc) (*App, func(), error) {
	// Wire build App (所有依赖都由 wire 自动注入)
	app, cleanup, err := initApp(configFile)
	if err != nil {
		return nil, nil, err
	}
	return app, cleanup, nil
}

// Run start app and wait for exit signal, then gracefully shutdown
func Run(app *App, cleanup func()) {
	httpConf := app.AppConf.Http

	// start metrics server
	if app.MetricsServer != nil {
		if err := app.MetricsServer.Start(); err != nil {
			log.Errorw("Metrics server failed", "error", err)
		}
	}

	// set signal listener (graceful shutdown)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	// start HTTP server (async)
	go func() {
		addr := httpConf.Addr()
		log.Infow("HTTP listener started",
			"address", addr,
			"tls", httpConf.TLS.CertFile != "",
		)
		var err error
		if httpConf.TLS.CertFile != "" && httpConf.TLS.KeyFile != "" {
			err = app.HttpApp.ListenTLS(addr, httpConf.TLS.CertFile, httpConf.TLS.KeyFile)
		} else {
			err = app.HttpApp.Listen(addr)
		}
		if err != nil {
			log.Errorw("HTTP listener failed",
				"address", addr,
				"error", err,
			)
		}
	}()

	// wait for exit signal
	sig := <-quit
	log.Infow("Received signal, shutting down gracefully...", "signal", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Duration(httpConf.ShutdownTimeout)*time.Second)
	defer shutdownCancel()
	if err := app.HttpApp.ShutdownWithContext(shutdownCtx); err != nil {
		log.Errorw("HTTP server shutdown error", "error", err)
	} else {
		log.Info("HTTP server shut down gracefully")
	}

	cleanup()

	log.Info("Server shutdown complete")
}
