// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"nailsite/internal/cache"
	"nailsite/internal/config"
	"nailsite/internal/handlers"
	"nailsite/internal/middleware"
	"nailsite/internal/router"
	"nailsite/internal/site"
)

func runServe(ctx context.Context, cfg *config.Config, watch bool) error {
	p, err := newPipeline(cfg)
	if err != nil {
		return err
	}
	snap, err := p.build(ctx)
	if err != nil {
		return err
	}
	store := site.NewStore(snap)

	// The L2 page cache is optional. Without Valkey every request renders.
	var pageCache cache.Pages = cache.Noop{}
	if cfg.CacheEnabled() {
		client, err := cache.ConnectValkey(ctx, cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
		if err != nil {
			return fmt.Errorf("connect to valkey: %w", err)
		}
		defer client.Close()
		pageCache = cache.NewPageCache(client, cfg.PageCacheTTL)
	} else {
		slog.Warn("valkey not configured, page cache disabled")
	}

	public := handlers.NewPublic(store, p.engine, pageCache)

	if watch {
		w := site.NewWatcher(cfg.ContentDir, store, p.build)
		w.OnSwap = func(old, _ *site.Snapshot) {
			public.Invalidate(context.WithoutCancel(ctx), old)
		}
		go func() {
			if err := w.Run(ctx); err != nil {
				slog.Error("content watcher stopped", "error", err)
			}
		}()
	}

	routerOpts := router.Options{HSTS: cfg.IsProduction()}
	if cfg.RateLimit > 0 {
		routerOpts.RateLimiter = middleware.NewRateLimiter(ctx, cfg.RateLimit, time.Minute, cfg.TrustProxy)
	}

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router.New(public, routerOpts),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", cfg.Addr(), "build", snap.ID, "watch", watch)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}
	slog.Info("shutdown signal received")

	// Give active requests up to 30 seconds to complete.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}
