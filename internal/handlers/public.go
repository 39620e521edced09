// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the HTTP handlers of the public site. Every
// request reads the current build from the site store once, checks the L2
// page cache for that build, and renders through the template engine on a
// miss.
package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"nailsite/internal/cache"
	"nailsite/internal/engine"
	"nailsite/internal/site"
)

// Public groups handlers for the public-facing site.
type Public struct {
	store     *site.Store
	engine    *engine.Engine
	pageCache cache.Pages
}

// NewPublic creates a new Public handler group. pageCache may be nil, in
// which case nothing is cached.
func NewPublic(store *site.Store, eng *engine.Engine, pageCache cache.Pages) *Public {
	if pageCache == nil {
		pageCache = cache.Noop{}
	}
	return &Public{store: store, engine: eng, pageCache: pageCache}
}

// Blog renders the listing of every category and its pages. It serves
// both / and /blog.
func (p *Public) Blog(w http.ResponseWriter, r *http.Request) {
	snap := p.store.Load()
	p.serveCached(w, r, snap.ID.String(), cache.ListKey, http.StatusOK, func() ([]byte, error) {
		return p.engine.RenderList(snap.Summary())
	})
}

// Page renders a single page by its folder.
func (p *Public) Page(w http.ResponseWriter, r *http.Request) {
	snap := p.store.Load()
	folder := chi.URLParam(r, "folder")

	page, ok := snap.Page(folder)
	if !ok {
		p.NotFound(w, r)
		return
	}

	// Non-canonical spellings redirect to the permalink.
	if r.URL.Path != page.Permalink() {
		http.Redirect(w, r, page.Permalink(), http.StatusMovedPermanently)
		return
	}

	build := snap.ID.String()
	p.serveCached(w, r, build, cache.FolderKey(page.Folder), http.StatusOK, func() ([]byte, error) {
		return p.engine.RenderPost(build, page)
	})
}

// NotFound renders the 404 page.
func (p *Public) NotFound(w http.ResponseWriter, r *http.Request) {
	rendered, err := p.engine.RenderNotFound()
	if err != nil {
		http.NotFound(w, r)
		return
	}
	writeHTML(w, http.StatusNotFound, rendered)
}

// HighlightCSS serves the stylesheet for highlighted code blocks.
func (p *Public) HighlightCSS(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(p.engine.HighlightCSS())
}

// Invalidate drops the cached pages of a build that has been replaced.
func (p *Public) Invalidate(ctx context.Context, old *site.Snapshot) {
	if old == nil {
		return
	}
	p.pageCache.InvalidateBuild(ctx, old.ID.String())
	p.engine.Retain(p.store.Load().ID.String())
}

// serveCached writes the cached document for key or renders, caches and
// writes it.
func (p *Public) serveCached(w http.ResponseWriter, r *http.Request, build, key string, status int, render func() ([]byte, error)) {
	ctx := r.Context()

	if cached, ok := p.pageCache.Get(ctx, build, key); ok {
		writeHTML(w, status, cached)
		return
	}

	rendered, err := render()
	if err != nil {
		slog.Error("render failed", "error", err, "key", key, "build", build)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	p.pageCache.Set(ctx, build, key, rendered)
	writeHTML(w, status, rendered)
}

func writeHTML(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(body)
}
