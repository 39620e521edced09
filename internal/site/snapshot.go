// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package site

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"nailsite/internal/models"
)

// Source supplies the pages of a build.
type Source interface {
	Load(ctx context.Context) ([]models.Page, error)
}

// Options configures Build.
type Options struct {
	// CategoryOrder lists category names that are displayed first.
	CategoryOrder []string
}

// Snapshot is the immutable result of one build. It is shared by
// reference with every reader and never modified: accessors hand out
// copies, so readers need no locking.
type Snapshot struct {
	ID      uuid.UUID
	BuiltAt time.Time

	pages   []models.Page
	byPath  map[string]int
	summary models.Summary
}

// NewSnapshot groups pages and indexes them by permalink. pages must
// already be in display order and have unique folders.
func NewSnapshot(pages []models.Page, opts Options) *Snapshot {
	owned := clonePages(pages)
	byPath := make(map[string]int, len(owned))
	for i, p := range owned {
		byPath[p.Permalink()] = i
	}
	return &Snapshot{
		ID:      uuid.New(),
		BuiltAt: time.Now().UTC(),
		pages:   owned,
		byPath:  byPath,
		summary: BuildSummary(Group(owned, opts.CategoryOrder)),
	}
}

// Build loads pages from src and assembles a snapshot.
func Build(ctx context.Context, src Source, opts Options) (*Snapshot, error) {
	start := time.Now()
	pages, err := src.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load content: %w", err)
	}
	snap := NewSnapshot(pages, opts)
	slog.Info("site built",
		"build", snap.ID,
		"pages", len(pages),
		"categories", len(snap.summary.Categories),
		"duration", time.Since(start).String(),
	)
	return snap, nil
}

// Pages returns a copy of all pages in display order.
func (s *Snapshot) Pages() []models.Page {
	return clonePages(s.pages)
}

// Page looks up a page by folder. Lookups go through the permalink so
// "Release 1.0" and "release-1-0" find the same page.
func (s *Snapshot) Page(folder string) (models.Page, bool) {
	p := models.Page{Folder: folder}
	i, ok := s.byPath[p.Permalink()]
	if !ok {
		return models.Page{}, false
	}
	return s.pages[i].Clone(), true
}

// Summary returns a copy of the grouped listing.
func (s *Snapshot) Summary() models.Summary {
	return BuildSummary(s.summary.Categories)
}

// Store holds the current snapshot. Readers never lock; a rebuild swaps
// in a new snapshot.
type Store struct {
	current atomic.Pointer[Snapshot]
}

// NewStore returns a Store serving snap.
func NewStore(snap *Snapshot) *Store {
	s := &Store{}
	s.current.Store(snap)
	return s
}

// Load returns the current snapshot.
func (s *Store) Load() *Snapshot {
	return s.current.Load()
}

// Swap publishes snap and returns the previous snapshot.
func (s *Store) Swap(snap *Snapshot) *Snapshot {
	return s.current.Swap(snap)
}
