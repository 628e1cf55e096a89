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

package router

import (
	"github.com/go-arcade/epcentra/internal/engine/service"
	"github.com/go-arcade/epcentra/pkg/http"
	"github.com/go-arcade/epcentra/pkg/metrics"
	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
)

// ProviderSet 提供路由相关的依赖
var ProviderSet = wire.NewSet(ProvideRouter)

// ProvideRouter 提供路由实例，未配置 redis 时跳过 token 存在性校验
func ProvideRouter(httpConf *http.Http, services *service.Services, client *redis.Client, metricsServer *metrics.Server) *Router {
	var tokens redis.Cmdable
	if client != nil {
		tokens = client
	}
	return NewRouter(httpConf, services, tokens, metricsServer)
}
