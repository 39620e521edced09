// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"context"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// visitor tracks request timestamps for a single client.
type visitor struct {
	mu   sync.Mutex
	hits []time.Time
}

// RateLimiter limits requests per client IP over a sliding window.
type RateLimiter struct {
	mu         sync.RWMutex
	visitors   map[string]*visitor
	limit      int
	window     time.Duration
	trustProxy bool
	now        func() time.Time
}

// NewRateLimiter allows limit requests per window and client. Proxy
// headers are only used to identify clients when trustProxy is set. A
// background goroutine drops idle clients until ctx is cancelled.
func NewRateLimiter(ctx context.Context, limit int, window time.Duration, trustProxy bool) *RateLimiter {
	rl := &RateLimiter{
		visitors:   make(map[string]*visitor),
		limit:      limit,
		window:     window,
		trustProxy: trustProxy,
		now:        time.Now,
	}

	go func() {
		ticker := time.NewTicker(max(window, time.Minute))
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				rl.cleanup()
			case <-ctx.Done():
				return
			}
		}
	}()

	return rl
}

// allow records a hit for key. When the limit is reached it returns false
// and how long until the oldest hit leaves the window.
func (rl *RateLimiter) allow(key string) (bool, time.Duration) {
	rl.mu.RLock()
	v, ok := rl.visitors[key]
	rl.mu.RUnlock()

	if !ok {
		rl.mu.Lock()
		if v, ok = rl.visitors[key]; !ok {
			v = &visitor{}
			rl.visitors[key] = v
		}
		rl.mu.Unlock()
	}

	now := rl.now()
	cutoff := now.Add(-rl.window)

	v.mu.Lock()
	defer v.mu.Unlock()

	live := v.hits[:0]
	for _, ts := range v.hits {
		if ts.After(cutoff) {
			live = append(live, ts)
		}
	}
	v.hits = live

	if len(v.hits) >= rl.limit {
		return false, v.hits[0].Add(rl.window).Sub(now)
	}
	v.hits = append(v.hits, now)
	return true, 0
}

// cleanup drops clients with no hits inside the window.
func (rl *RateLimiter) cleanup() {
	cutoff := rl.now().Add(-rl.window)

	rl.mu.Lock()
	defer rl.mu.Unlock()

	for key, v := range rl.visitors {
		v.mu.Lock()
		idle := len(v.hits) == 0 || !v.hits[len(v.hits)-1].After(cutoff)
		v.mu.Unlock()
		if idle {
			delete(rl.visitors, key)
		}
	}
}

// Middleware rejects clients over the limit with 429 and a Retry-After
// header. Health checks are never limited.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}
		ok, wait := rl.allow(rl.clientIP(r))
		if !ok {
			secs := int(math.Ceil(wait.Seconds()))
			w.Header().Set("Retry-After", strconv.Itoa(max(secs, 1)))
			http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP identifies the client. X-Forwarded-For (leftmost entry) and
// X-Real-IP are only honoured behind a trusted proxy.
func (rl *RateLimiter) clientIP(r *http.Request) string {
	if rl.trustProxy {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			first, _, _ := strings.Cut(xff, ",")
			return strings.TrimSpace(first)
		}
		if xri := r.Header.Get("X-Real-IP"); xri != "" {
			return strings.TrimSpace(xri)
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
