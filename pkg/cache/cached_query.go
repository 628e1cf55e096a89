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
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-arcade/epcentra/pkg/log"
)

// QueryFunc loads the value from the source of truth on a cache miss.
type QueryFunc[T any] func(ctx context.Context) (T, error)

// KeyFunc derives a cache key from lookup parameters.
type KeyFunc func(params ...any) string

// CachedQuery implements cache-aside reads with sonic-encoded values.
type CachedQuery[T any] struct {
	cache     ICache
	keyFunc   KeyFunc
	ttl       time.Duration
	logPrefix string
}

// CachedQueryOption configures CachedQuery behavior
type CachedQueryOption[T any] func(*CachedQuery[T])

// WithTTL sets the cache expiration time
func WithTTL[T any](ttl time.Duration) CachedQueryOption[T] {
	return func(cq *CachedQuery[T]) {
		cq.ttl = ttl
	}
}

// WithLogPrefix sets the log prefix for debugging
func WithLogPrefix[T any](prefix string) CachedQueryOption[T] {
	return func(cq *CachedQuery[T]) {
		cq.logPrefix = prefix
	}
}

// NewCachedQuery creates a CachedQuery. A nil cache disables caching.
func NewCachedQuery[T any](cache ICache, keyFunc KeyFunc, opts ...CachedQueryOption[T]) *CachedQuery[T] {
	cq := &CachedQuery[T]{
		cache:     cache,
		keyFunc:   keyFunc,
		ttl:       time.Hour,
		logPrefix: "[CachedQuery]",
	}
	for _, opt := range opts {
		opt(cq)
	}
	return cq
}

// Key returns the cache key for params.
func (cq *CachedQuery[T]) Key(params ...any) string {
	return cq.keyFunc(params...)
}

// Get returns the cached value for params, or calls query and caches its result.
// Query errors are returned as-is and never cached.
func (cq *CachedQuery[T]) Get(ctx context.Context, query QueryFunc[T], params ...any) (T, bool, error) {
	cacheKey := cq.keyFunc(params...)

	if cq.cache != nil {
		data, err := cq.cache.Get(ctx, cacheKey).Result()
		switch {
		case err == nil && data != "":
			var result T
			if err := sonic.UnmarshalString(data, &result); err == nil {
				log.Debugw(cq.logPrefix+" cache hit", "key", cacheKey)
				return result, true, nil
			}
			log.Warnw(cq.logPrefix+" failed to unmarshal cached data", "key", cacheKey, "error", err)
		case err != nil && !errors.Is(err, ErrCacheMiss):
			log.Warnw(cq.logPrefix+" cache get error", "key", cacheKey, "error", err)
		}
	}

	log.Debugw(cq.logPrefix+" cache miss, querying source", "key", cacheKey)
	result, err := query(ctx)
	if err != nil {
		var zero T
		return zero, false, err
	}

	if cq.cache != nil {
		data, err := sonic.MarshalString(result)
		if err != nil {
			log.Warnw(cq.logPrefix+" failed to marshal result for caching", "key", cacheKey, "error", err)
			return result, false, nil
		}
		if err := cq.cache.Set(ctx, cacheKey, data, cq.ttl).Err(); err != nil {
			log.Warnw(cq.logPrefix+" failed to cache result", "key", cacheKey, "error", err)
		}
	}
	return result, false, nil
}

// Invalidate removes the cached value for params.
func (cq *CachedQuery[T]) Invalidate(ctx context.Context, params ...any) error {
	if cq.cache == nil {
		return nil
	}
	cacheKey := cq.keyFunc(params...)
	if err := cq.cache.Del(ctx, cacheKey).Err(); err != nil {
		log.Warnw(cq.logPrefix+" failed to invalidate cache", "key", cacheKey, "error", err)
		return fmt.Errorf("invalidate %s: %w", cacheKey, err)
	}
	log.Debugw(cq.logPrefix+" cache invalidated", "key", cacheKey)
	return nil
}
