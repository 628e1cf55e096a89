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

package cache

import (
	"fmt"

	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
)

// ProviderSet 提供缓存相关依赖（Redis + 本地 FastCache）
var ProviderSet = wire.NewSet(ProvideRedis, ProvideICache)

// ProvideRedis 提供 Redis 客户端，返回的清理函数关闭连接
func ProvideRedis(conf Redis) (*redis.Client, func(), error) {
	client, err := NewRedis(conf)
	if err != nil {
		return nil, nil, err
	}
	return client, func() { _ = client.Close() }, nil
}

// ProvideICache 按配置选择缓存实现
func ProvideICache(conf Cache, client *redis.Client) (ICache, error) {
	conf.SetDefaults()
	switch conf.Mode {
	case ModeRedis:
		return NewRedisCache(client), nil
	case ModeLocal:
		return NewFastCache(conf.LocalMaxBytes), nil
	case ModeHybrid:
		return NewHybridCache(NewFastCache(conf.LocalMaxBytes), NewRedisCache(client), conf.LocalTTL), nil
	default:
		return nil, fmt.Errorf("unsupported cache mode %q", conf.Mode)
	}
}
