// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"context"

	"nailsite/internal/config"
	"nailsite/internal/export"
)

func runBuild(ctx context.Context, cfg *config.Config) error {
	p, err := newPipeline(cfg)
	if err != nil {
		return err
	}
	snap, err := p.build(ctx)
	if err != nil {
		return err
	}
	_, err = export.Write(ctx, snap, p.engine, cfg.OutputDir)
	return err
}
