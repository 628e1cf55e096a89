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

package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/go-arcade/epcentra/pkg/cache"
	"github.com/go-arcade/epcentra/pkg/database"
	"github.com/go-arcade/epcentra/pkg/http"
	"github.com/go-arcade/epcentra/pkg/log"
	"github.com/go-arcade/epcentra/pkg/metrics"
	"github.com/go-arcade/epcentra/pkg/trace"
	"github.com/spf13/viper"
)

const envPrefix = "EPCENTRA"

type AppConfig struct {
	Log      log.Conf
	Http     http.Http
	Database database.Database
	Redis    cache.Redis
	Cache    cache.Cache
	Metrics  metrics.MetricsConfig
	Trace    trace.Conf
}

var (
	cfg     AppConfig
	cfgLock sync.RWMutex
	once    sync.Once
)

// NewConf 加载一次配置文件，之后的修改通过 WatchConfig 热更新
func NewConf(confPath string) *AppConfig {
	once.Do(func() {
		loaded, err := LoadConfigFile(confPath)
		if err != nil {
			panic(fmt.Sprintf("load config file error: %s", err))
		}
		cfgLock.Lock()
		cfg = loaded
		cfgLock.Unlock()
	})
	return &cfg
}

// LoadConfigFile 读取配置文件，环境变量 EPCENTRA_HTTP_PORT 等可覆盖同名配置
func LoadConfigFile(confPath string) (AppConfig, error) {
	var out AppConfig

	config := viper.New()
	config.SetConfigFile(confPath)
	config.SetEnvPrefix(envPrefix)
	config.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	config.AutomaticEnv()
	if err := config.ReadInConfig(); err != nil {
		return out, fmt.Errorf("failed to read configuration file: %w", err)
	}
	if err := config.Unmarshal(&out); err != nil {
		return out, fmt.Errorf("failed to unmarshal configuration file: %w", err)
	}

	config.OnConfigChange(func(e fsnotify.Event) {
		log.Infow("configuration changed, reloading", "file", e.Name, "op", e.Op.String())
		var next AppConfig
		if err := config.Unmarshal(&next); err != nil {
			log.Errorw("failed to unmarshal configuration file", "file", e.Name, "error", err)
			return
		}
		applyReload(next)
	})
	config.WatchConfig()

	log.Infow("config file loaded", "path", confPath)
	return out, nil
}

// applyReload 只热更新运行期可调整的配置项，监听地址与连接参数需要重启
func applyReload(next AppConfig) {
	cfgLock.Lock()
	defer cfgLock.Unlock()
	cfg.Http.AccessLog = next.Http.AccessLog
}
