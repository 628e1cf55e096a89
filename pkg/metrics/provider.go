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

package metrics

import (
	"github.com/go-arcade/epcentra/pkg/log"
	"github.com/google/wire"
)

// ProviderSet 提供 metrics 相关依赖
var ProviderSet = wire.NewSet(ProvideMetricsServer)

// ProvideMetricsServer 创建 metrics 服务并注册应用指标
func ProvideMetricsServer(conf MetricsConfig) *Server {
	server := NewServer(conf)
	for _, c := range Collectors() {
		if err := server.RegisterCollector(c); err != nil {
			log.Warnw("register collector failed", "error", err)
		}
	}
	return server
}
