// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// page.go provides a Valkey-backed full-page HTML cache (L2).
// Rendered documents are stored under the ID of the build they came from,
// so publishing a new build makes every old entry unreachable; old keys
// expire on their own or are removed with InvalidateBuild.
package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// pageKeyPrefix is the Valkey key prefix for cached pages.
	pageKeyPrefix = "page:"

	// DefaultPageTTL is how long a rendered page stays cached.
	DefaultPageTTL = 5 * time.Minute
)

// Pages is the page cache used by the public handlers. A nil Pages is not
// valid; use Noop when Valkey is not configured.
type Pages interface {
	Get(ctx context.Context, build, key string) ([]byte, bool)
	Set(ctx context.Context, build, key string, html []byte)
	InvalidateBuild(ctx context.Context, build string)
}

var (
	_ Pages = (*PageCache)(nil)
	_ Pages = Noop{}
)

// PageCache manages full-page HTML caching in Valkey.
type PageCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPageCache creates a new page cache backed by the given Valkey client.
func NewPageCache(client *redis.Client, ttl time.Duration) *PageCache {
	if ttl == 0 {
		ttl = DefaultPageTTL
	}
	return &PageCache{client: client, ttl: ttl}
}

// Key returns the Valkey key for a page of a build.
func Key(build, key string) string {
	return pageKeyPrefix + build + ":" + key
}

// Get retrieves cached HTML. The bool is false on a miss or error.
func (pc *PageCache) Get(ctx context.Context, build, key string) ([]byte, bool) {
	val, err := pc.client.Get(ctx, Key(build, key)).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		slog.Warn("page cache get error", "key", key, "error", err)
		return nil, false
	}
	slog.Debug("page cache hit", "build", build, "key", key)
	return val, true
}

// Set stores rendered HTML with the configured TTL.
func (pc *PageCache) Set(ctx context.Context, build, key string, html []byte) {
	if err := pc.client.Set(ctx, Key(build, key), html, pc.ttl).Err(); err != nil {
		slog.Warn("page cache set error", "key", key, "error", err)
	}
}

// InvalidateBuild removes every cached page of a build by scanning for
// its prefix.
func (pc *PageCache) InvalidateBuild(ctx context.Context, build string) {
	var cursor uint64
	var deleted int
	for {
		keys, nextCursor, err := pc.client.Scan(ctx, cursor, pageKeyPrefix+build+":*", 100).Result()
		if err != nil {
			slog.Warn("page cache scan error", "error", err)
			return
		}
		if len(keys) > 0 {
			if err := pc.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("page cache bulk delete error", "error", err)
			}
			deleted += len(keys)
		}
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
	if deleted > 0 {
		slog.Info("page cache build cleared", "build", build, "deleted", deleted)
	}
}

// Noop is a Pages implementation that never caches.
type Noop struct{}

// Get always misses.
func (Noop) Get(context.Context, string, string) ([]byte, bool) { return nil, false }

// Set does nothing.
func (Noop) Set(context.Context, string, string, []byte) {}

// InvalidateBuild does nothing.
func (Noop) InvalidateBuild(context.Context, string) {}

// ListKey is the cache key of the category listing served at / and /blog.
const ListKey = "_list"

// FolderKey returns the cache key for a page folder.
func FolderKey(folder string) string {
	return "folder:" + folder
}
