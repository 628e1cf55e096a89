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
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss indicates that the key was not found in cache
var ErrCacheMiss = redis.Nil

// ICache 定义缓存接口，本地缓存与 Redis 共用 redis 命令返回值
type ICache interface {
	// Get 获取缓存值，未命中时返回 redis.Nil
	Get(ctx context.Context, key string) *redis.StringCmd
	// Set 设置缓存值
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	// Del 删除缓存
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// Cache selects the cache backend.
type Cache struct {
	// Mode is one of redis, local or hybrid.
	Mode          string
	LocalMaxBytes int
	TTL           time.Duration
	// LocalTTL bounds how long an entry promoted from redis stays local.
	LocalTTL time.Duration
}

const (
	ModeRedis  = "redis"
	ModeLocal  = "local"
	ModeHybrid = "hybrid"
)

func (c *Cache) SetDefaults() {
	if c.Mode == "" {
		c.Mode = ModeRedis
	}
	if c.LocalMaxBytes <= 0 {
		c.LocalMaxBytes = 32 * 1024 * 1024
	}
	if c.TTL <= 0 {
		c.TTL = 5 * time.Minute
	}
	if c.LocalTTL <= 0 || c.LocalTTL > c.TTL {
		c.LocalTTL = c.TTL
	}
}

func missCmd(ctx context.Context, key string) *redis.StringCmd {
	cmd := redis.NewStringCmd(ctx, "get", key)
	cmd.SetErr(redis.Nil)
	return cmd
}
