// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package export writes a site snapshot to disk as plain HTML files that
// any static file server can host. The layout mirrors the server routes:
//
//	index.html, blog/index.html      the listing
//	<folder>/index.html              one per page
//	404.html                         the not-found page
//	static/...                       embedded assets and chroma.css
package export

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"nailsite/internal/content"
	"nailsite/internal/engine"
	"nailsite/internal/permalink"
	"nailsite/internal/site"
	"nailsite/web"
)

// Result describes a finished export.
type Result struct {
	Pages int // page documents written
	Files int // all files written, including listings and assets
}

// Write renders snap with eng into outDir. The directory is removed and
// recreated so stale pages from earlier builds do not survive.
func Write(ctx context.Context, snap *site.Snapshot, eng *engine.Engine, outDir string) (Result, error) {
	start := time.Now()
	if outDir == "" || filepath.Clean(outDir) == "/" || filepath.Clean(outDir) == "." {
		return Result{}, fmt.Errorf("refusing to export into %q", outDir)
	}

	pages := snap.Pages()
	for _, p := range pages {
		if permalink.IsReserved(p.Folder) {
			return Result{}, fmt.Errorf("%w: %q in %s", content.ErrReservedFolder, p.Folder, p.SourcePath)
		}
	}

	if err := os.RemoveAll(outDir); err != nil {
		return Result{}, fmt.Errorf("clear output dir: %w", err)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return Result{}, fmt.Errorf("create output dir: %w", err)
	}

	w := &writer{root: outDir}
	build := snap.ID.String()

	list, err := eng.RenderList(snap.Summary())
	if err != nil {
		return Result{}, err
	}
	notFound, err := eng.RenderNotFound()
	if err != nil {
		return Result{}, err
	}
	for name, body := range map[string][]byte{
		"index.html":      list,
		"blog/index.html": list,
		"404.html":        notFound,
	} {
		if err := w.file(name, body); err != nil {
			return Result{}, err
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for _, p := range pages {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			doc, err := eng.RenderPost(build, p)
			if err != nil {
				return fmt.Errorf("render %s: %w", p.Folder, err)
			}
			return w.file(filepath.Join(p.Permalink(), "index.html"), doc)
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	assets, err := w.static()
	if err != nil {
		return Result{}, err
	}
	if err := w.file("static/css/chroma.css", eng.HighlightCSS()); err != nil {
		return Result{}, err
	}

	res := Result{Pages: len(pages), Files: 3 + len(pages) + assets + 1}
	slog.Info("site exported",
		"build", build,
		"dir", outDir,
		"pages", res.Pages,
		"files", res.Files,
		"duration", time.Since(start).String(),
	)
	return res, nil
}

type writer struct {
	root string
}

// file writes body to name relative to the output root, creating parent
// directories as needed.
func (w *writer) file(name string, body []byte) error {
	full := filepath.Join(w.root, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("create dir for %s: %w", name, err)
	}
	if err := os.WriteFile(full, body, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

// static copies the embedded static tree and returns the number of files.
func (w *writer) static() (int, error) {
	var n int
	err := fs.WalkDir(web.StaticFS, "static", func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := fs.ReadFile(web.StaticFS, p)
		if err != nil {
			return err
		}
		n++
		return w.file(p, data)
	})
	if err != nil {
		return 0, fmt.Errorf("copy static assets: %w", err)
	}
	return n, nil
}
