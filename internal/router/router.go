// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up the HTTP routes and middleware chain of the
// public site.
package router

import (
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"

	"nailsite/internal/handlers"
	"nailsite/internal/middleware"
	"nailsite/web"
)

// Options configures the router.
type Options struct {
	// HSTS enables Strict-Transport-Security. Set it in production.
	HSTS bool

	// RateLimiter, if set, limits requests per client.
	RateLimiter *middleware.RateLimiter
}

// New creates and returns the configured Chi router with all middleware
// and routes wired up.
func New(public *handlers.Public, opts Options) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders(opts.HSTS))
	if opts.RateLimiter != nil {
		r.Use(opts.RateLimiter.Middleware)
	}

	r.Get("/health", healthHandler)

	// Embedded assets. The highlight stylesheet is generated from the
	// configured chroma style.
	r.Get("/static/css/chroma.css", public.HighlightCSS)
	r.Handle("/static/*", staticHandler())

	r.Get("/", public.Blog)
	r.Get("/blog", public.Blog)
	// Fixed routes above must stay in sync with permalink.Reserved.
	r.Get("/{folder}", public.Page)

	r.NotFound(public.NotFound)

	return r
}

// staticHandler serves web/static under /static/.
func staticHandler() http.Handler {
	sub, err := fs.Sub(web.StaticFS, "static")
	if err != nil {
		// The embed directive guarantees the directory exists.
		panic(err)
	}
	files := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=86400")
		files.ServeHTTP(w, r)
	})
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
