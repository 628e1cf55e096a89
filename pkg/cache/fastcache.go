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
	"encoding/binary"
	"time"

	"github.com/VictoriaMetrics/fastcache"
	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
)

// expiry header: unix nanoseconds, zero means no expiry
const expiryLen = 8

// FastCache is an in-process cache backed by VictoriaMetrics fastcache.
// Entries carry their own deadline, so no background cleanup is needed.
type FastCache struct {
	cache *fastcache.Cache
	now   func() time.Time
}

// NewFastCache creates a FastCache holding at most maxBytes (16MB when unset).
func NewFastCache(maxBytes int) *FastCache {
	if maxBytes <= 0 {
		maxBytes = 16 * 1024 * 1024
	}
	return &FastCache{
		cache: fastcache.New(maxBytes),
		now:   time.Now,
	}
}

func (fc *FastCache) Get(ctx context.Context, key string) *redis.StringCmd {
	raw, ok := fc.cache.HasGet(nil, []byte(key))
	if !ok || len(raw) < expiryLen {
		return missCmd(ctx, key)
	}
	deadline := int64(binary.BigEndian.Uint64(raw[:expiryLen]))
	if deadline != 0 && fc.now().UnixNano() >= deadline {
		fc.cache.Del([]byte(key))
		return missCmd(ctx, key)
	}
	cmd := redis.NewStringCmd(ctx, "get", key)
	cmd.SetVal(string(raw[expiryLen:]))
	return cmd
}

func (fc *FastCache) Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	cmd := redis.NewStatusCmd(ctx, "set", key)

	var payload []byte
	switch v := value.(type) {
	case string:
		payload = []byte(v)
	case []byte:
		payload = v
	default:
		data, err := sonic.Marshal(v)
		if err != nil {
			cmd.SetErr(err)
			return cmd
		}
		payload = data
	}

	var deadline int64
	if expiration > 0 {
		deadline = fc.now().Add(expiration).UnixNano()
	}
	buf := make([]byte, expiryLen+len(payload))
	binary.BigEndian.PutUint64(buf[:expiryLen], uint64(deadline))
	copy(buf[expiryLen:], payload)

	fc.cache.Set([]byte(key), buf)
	cmd.SetVal("OK")
	return cmd
}

func (fc *FastCache) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	var n int64
	for _, key := range keys {
		if fc.cache.Has([]byte(key)) {
			fc.cache.Del([]byte(key))
			n++
		}
	}
	cmd := redis.NewIntCmd(ctx, "del")
	cmd.SetVal(n)
	return cmd
}

// Reset drops every entry.
func (fc *FastCache) Reset() {
	fc.cache.Reset()
}
