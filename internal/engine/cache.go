// cache.go provides an in-memory cache of converted post bodies. Entries
// are keyed by build ID and folder, so a rebuild produces cache misses
// for every page and stale builds can be dropped in one call.
package engine

import (
	"html/template"
	"log/slog"
	"sync"
)

// cacheKey uniquely identifies a converted body within a build.
type cacheKey struct {
	build  string
	folder string
}

// bodyCache is a concurrency-safe cache of converted Markdown bodies.
type bodyCache struct {
	mu      sync.RWMutex
	entries map[cacheKey]template.HTML
}

// newBodyCache creates an empty body cache.
func newBodyCache() *bodyCache {
	return &bodyCache{
		entries: make(map[cacheKey]template.HTML),
	}
}

// get retrieves a converted body. The bool is false on a miss.
func (c *bodyCache) get(build, folder string) (template.HTML, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	html, ok := c.entries[cacheKey{build: build, folder: folder}]
	return html, ok
}

// put stores a converted body.
func (c *bodyCache) put(build, folder string, html template.HTML) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[cacheKey{build: build, folder: folder}] = html
}

// retain removes every entry that does not belong to build.
func (c *bodyCache) retain(build string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var dropped int
	for k := range c.entries {
		if k.build != build {
			delete(c.entries, k)
			dropped++
		}
	}
	slog.Debug("body cache pruned", "build", build, "dropped", dropped, "size", len(c.entries))
}

// size returns the number of cached bodies.
func (c *bodyCache) size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
