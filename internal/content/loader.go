// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package content loads Markdown files with front matter from a directory
// tree and turns them into pages. Files are parsed in parallel; every
// result is merged before pages are handed on, and folder uniqueness is
// enforced across the whole set.
package content

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"nailsite/internal/models"
	"nailsite/internal/permalink"
)

// Options configures a Loader.
type Options struct {
	// IncludeDrafts keeps records marked draft: true.
	IncludeDrafts bool

	// Extensions lists the file extensions treated as content.
	// Defaults to .md and .markdown.
	Extensions []string
}

// Loader reads content files from a filesystem.
type Loader struct {
	fsys       fs.FS
	drafts     bool
	extensions []string
}

// NewLoader creates a Loader rooted at fsys.
func NewLoader(fsys fs.FS, opts Options) *Loader {
	exts := opts.Extensions
	if len(exts) == 0 {
		exts = []string{".md", ".markdown"}
	}
	return &Loader{fsys: fsys, drafts: opts.IncludeDrafts, extensions: exts}
}

// Discover returns the content file paths in lexical order. Hidden
// entries and entries starting with "_" are skipped.
func (l *Loader) Discover(ctx context.Context) ([]string, error) {
	var paths []string
	err := fs.WalkDir(l.fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		name := d.Name()
		if p != "." && (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || !l.isContent(name) {
			return nil
		}
		paths = append(paths, p)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("discover content: %w", err)
	}
	return paths, nil
}

// LoadFile reads and parses a single content file.
func (l *Loader) LoadFile(ctx context.Context, p string) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	data, err := fs.ReadFile(l.fsys, p)
	if err != nil {
		return Record{}, fmt.Errorf("read %s: %w", p, err)
	}
	return Parse(p, data)
}

// Load parses every content file and returns the pages in reverse
// chronological order, ties broken by folder. Undated pages sort last.
func (l *Loader) Load(ctx context.Context) ([]models.Page, error) {
	paths, err := l.Discover(ctx)
	if err != nil {
		return nil, err
	}

	records := make([]Record, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, p := range paths {
		g.Go(func() error {
			r, err := l.LoadFile(gctx, p)
			if err != nil {
				return err
			}
			records[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	kept := records[:0]
	for _, r := range records {
		if r.Draft && !l.drafts {
			slog.Debug("skipping draft", "path", r.Path)
			continue
		}
		kept = append(kept, r)
	}

	if err := checkFolders(kept); err != nil {
		return nil, err
	}

	pages := make([]models.Page, 0, len(kept))
	for _, r := range kept {
		pages = append(pages, r.Page())
	}
	SortPages(pages)

	slog.Info("content loaded", "files", len(paths), "pages", len(pages))
	return pages, nil
}

// SortPages orders pages newest first. Undated pages go last; equal dates
// are ordered by folder so the result is deterministic.
func SortPages(pages []models.Page) {
	sort.SliceStable(pages, func(i, j int) bool {
		a, b := pages[i].PublishedAt, pages[j].PublishedAt
		switch {
		case a.IsZero() != b.IsZero():
			return b.IsZero()
		case !a.Equal(b):
			return a.After(b)
		default:
			return pages[i].Folder < pages[j].Folder
		}
	})
}

// checkFolders reports every folder claimed by more than one record and
// every folder that collides with a site route.
func checkFolders(records []Record) error {
	seen := make(map[string]string, len(records))
	var errs []error
	for _, r := range records {
		if permalink.IsReserved(r.Folder) {
			errs = append(errs, fmt.Errorf("%w: %q in %s, reserved names are %s",
				ErrReservedFolder, r.Folder, r.Path, strings.Join(permalink.Reserved(), ", ")))
			continue
		}
		if first, ok := seen[r.Folder]; ok {
			errs = append(errs, fmt.Errorf("%w: %q in %s and %s", ErrDuplicateFolder, r.Folder, first, r.Path))
			continue
		}
		seen[r.Folder] = r.Path
	}
	return errors.Join(errs...)
}

func (l *Loader) isContent(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range l.extensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}
