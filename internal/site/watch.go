// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package site

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the watcher waits for a burst of file
// events to settle before rebuilding.
const DefaultDebounce = 250 * time.Millisecond

// RebuildFunc produces a fresh snapshot from the content directory.
type RebuildFunc func(ctx context.Context) (*Snapshot, error)

// Watcher rebuilds the site when files under a directory change and
// publishes the result to a Store. A failed rebuild keeps the previous
// snapshot.
type Watcher struct {
	dir      string
	store    *Store
	rebuild  RebuildFunc
	debounce time.Duration

	// OnSwap, if set, is called after a new snapshot is published.
	OnSwap func(old, current *Snapshot)
}

// NewWatcher creates a Watcher for dir.
func NewWatcher(dir string, store *Store, rebuild RebuildFunc) *Watcher {
	return &Watcher{dir: dir, store: store, rebuild: rebuild, debounce: DefaultDebounce}
}

// Run watches until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	if err := w.addTree(fw, w.dir); err != nil {
		return err
	}
	slog.Info("watching content", "dir", w.dir)

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if hidden(event.Name) {
				continue
			}
			// New directories need their own watch.
			if event.Has(fsnotify.Create) {
				if err := w.addTree(fw, event.Name); err != nil {
					slog.Debug("watch new path skipped", "path", event.Name, "error", err)
				}
			}
			slog.Debug("content changed", "path", event.Name, "op", event.Op.String())
			timer.Reset(w.debounce)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			slog.Warn("watcher error", "error", err)

		case <-timer.C:
			w.reload(ctx)
		}
	}
}

func (w *Watcher) reload(ctx context.Context) {
	snap, err := w.rebuild(ctx)
	if err != nil {
		slog.Warn("rebuild failed, keeping previous build", "error", err)
		return
	}
	old := w.store.Swap(snap)
	if w.OnSwap != nil {
		w.OnSwap(old, snap)
	}
}

// addTree watches root and every directory below it.
func (w *Watcher) addTree(fw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != root && hidden(p) {
			return filepath.SkipDir
		}
		if err := fw.Add(p); err != nil {
			return fmt.Errorf("watch %s: %w", p, err)
		}
		return nil
	})
}

func hidden(p string) bool {
	base := filepath.Base(p)
	return strings.HasPrefix(base, ".") || strings.HasPrefix(base, "_")
}
