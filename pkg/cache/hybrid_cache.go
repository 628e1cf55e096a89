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
	"errors"
	"time"

	"github.com/go-arcade/epcentra/pkg/log"
	"github.com/redis/go-redis/v9"
)

// HybridCache reads through a local FastCache before a remote cache.
// Writes and deletes go to both; the local copy lives at most localTTL.
type HybridCache struct {
	local    *FastCache
	remote   ICache
	localTTL time.Duration
}

// NewHybridCache combines a local and a remote cache.
func NewHybridCache(local *FastCache, remote ICache, localTTL time.Duration) *HybridCache {
	return &HybridCache{local: local, remote: remote, localTTL: localTTL}
}

func (hc *HybridCache) Get(ctx context.Context, key string) *redis.StringCmd {
	if cmd := hc.local.Get(ctx, key); cmd.Err() == nil {
		return cmd
	}
	cmd := hc.remote.Get(ctx, key)
	if cmd.Err() == nil {
		hc.local.Set(ctx, key, cmd.Val(), hc.localTTL)
	} else if !errors.Is(cmd.Err(), redis.Nil) {
		log.Warnw("hybrid cache remote get failed", "key", key, "error", cmd.Err())
	}
	return cmd
}

func (hc *HybridCache) Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	localTTL := hc.localTTL
	if expiration > 0 && (localTTL <= 0 || expiration < localTTL) {
		localTTL = expiration
	}
	hc.local.Set(ctx, key, value, localTTL)
	return hc.remote.Set(ctx, key, value, expiration)
}

func (hc *HybridCache) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	hc.local.Del(ctx, keys...)
	return hc.remote.Del(ctx, keys...)
}

// Shared 返回多实例之间一致的缓存层，hybrid 模式下绕过进程内的本地层。
// local 模式只适用于单实例部署，原样返回。
func Shared(c ICache) ICache {
	if hc, ok := c.(*HybridCache); ok {
		return hc.remote
	}
	return c
}
