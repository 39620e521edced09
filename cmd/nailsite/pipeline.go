// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"context"
	"fmt"
	"os"

	"nailsite/internal/config"
	"nailsite/internal/content"
	"nailsite/internal/engine"
	"nailsite/internal/markdown"
	"nailsite/internal/site"
)

// pipeline bundles the pieces shared by build and serve.
type pipeline struct {
	loader *content.Loader
	opts   site.Options
	engine *engine.Engine
}

func newPipeline(cfg *config.Config) (*pipeline, error) {
	if info, err := os.Stat(cfg.ContentDir); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("content directory %q not found", cfg.ContentDir)
	}

	conv := markdown.New(markdown.Options{Trusted: cfg.ContentTrusted, Style: cfg.CodeStyle})
	eng, err := engine.New(engine.Config{
		Site:      engine.Site{Name: cfg.SiteName, BaseURL: cfg.SiteBaseURL},
		Converter: conv,
		Style:     cfg.CodeStyle,
	})
	if err != nil {
		return nil, fmt.Errorf("initialize template engine: %w", err)
	}

	return &pipeline{
		loader: content.NewLoader(os.DirFS(cfg.ContentDir), content.Options{IncludeDrafts: cfg.ContentDrafts}),
		opts:   site.Options{CategoryOrder: cfg.CategoryOrder},
		engine: eng,
	}, nil
}

// build loads the content directory into a new snapshot.
func (p *pipeline) build(ctx context.Context) (*site.Snapshot, error) {
	return site.Build(ctx, p.loader, p.opts)
}
