// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package watch ingests text files as they appear or change in a directory.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/time/rate"

	"github.com/jeranaias/ragdesk/internal/controller"
	"github.com/jeranaias/ragdesk/internal/model"
)

// DefaultMaxFileSize is the largest file the watcher will ingest.
const DefaultMaxFileSize = 4 << 20

// Ingester adds text to the knowledge base.
type Ingester interface {
	Ingest(ctx context.Context, text string) (model.IngestResult, error)
}

// Options configures a Watcher.
type Options struct {
	// Extensions lists accepted file suffixes; empty accepts every file.
	Extensions []string
	// Debounce is how long a file must stay unchanged before it is ingested.
	Debounce time.Duration
	// MinInterval is the minimum gap between two ingests; 0 disables pacing.
	MinInterval time.Duration
	// MaxFileSize skips larger files; 0 means DefaultMaxFileSize.
	MaxFileSize int64
	// IncludeExisting ingests files already present when Run starts.
	IncludeExisting bool
}

// Event reports the result of ingesting one file.
type Event struct {
	Path   string
	Result model.IngestResult
	Err    error
}

// =============================================================================
// WATCHER
// =============================================================================

// Watcher feeds changed files in one directory tree to an Ingester.
type Watcher struct {
	root     string
	ingester Ingester
	opts     Options
	limiter  *rate.Limiter
	watcher  *fsnotify.Watcher

	mu      sync.Mutex
	pending map[string]time.Time
}

// New creates a watcher for dir. It does not start watching until Run.
func New(dir string, ingester Ingester, opts Options) (*Watcher, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("watch directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("watch directory: %s is not a directory", dir)
	}
	if opts.MaxFileSize <= 0 {
		opts.MaxFileSize = DefaultMaxFileSize
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	limit := rate.Inf
	if opts.MinInterval > 0 {
		limit = rate.Every(opts.MinInterval)
	}

	return &Watcher{
		root:     dir,
		ingester: ingester,
		opts:     opts,
		limiter:  rate.NewLimiter(limit, 1),
		watcher:  fw,
		pending:  make(map[string]time.Time),
	}, nil
}

// Run watches until ctx is cancelled, calling report after every ingest
// attempt. report may be nil. Run closes the underlying watcher on return.
func (w *Watcher) Run(ctx context.Context, report func(Event)) error {
	defer w.watcher.Close()
	if report == nil {
		report = func(Event) {}
	}

	if err := w.addRecursive(w.root); err != nil {
		return err
	}
	if w.opts.IncludeExisting {
		w.queueExisting()
	}
	log.Printf("WATCH_START | dir=%s extensions=%s", w.root, strings.Join(w.opts.Extensions, ","))

	tick := w.opts.Debounce / 2
	if tick < 10*time.Millisecond {
		tick = 10 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Printf("WATCH_STOP | dir=%s", w.root)
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("WATCH_ERROR | err=%v", err)

		case <-ticker.C:
			for _, path := range w.due(time.Now()) {
				if err := w.limiter.Wait(ctx); err != nil {
					return nil
				}
				if ev, ok := w.ingestFile(ctx, path); ok {
					report(ev)
				}
			}
		}
	}
}

// addRecursive adds a directory and all its subdirectories to the watch list.
func (w *Watcher) addRecursive(dir string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() {
			return nil
		}
		if path != dir && strings.HasPrefix(info.Name(), ".") {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			log.Printf("WATCH_ERROR | dir=%s err=%v", path, err)
		}
		return nil
	})
}

func (w *Watcher) queueExisting() {
	_ = filepath.Walk(w.root, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}
		if w.accepts(path) {
			w.mark(path, time.Time{})
		}
		return nil
	})
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			_ = w.addRecursive(event.Name)
			return
		}
	}
	if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
		if w.accepts(event.Name) {
			w.mark(event.Name, time.Now())
		}
	}
	if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
		w.mu.Lock()
		delete(w.pending, event.Name)
		w.mu.Unlock()
	}
}

// accepts reports whether path has one of the configured extensions and
// is not a hidden or editor temp file.
func (w *Watcher) accepts(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") || strings.HasSuffix(base, "~") {
		return false
	}
	if len(w.opts.Extensions) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(base))
	for _, e := range w.opts.Extensions {
		if strings.ToLower(e) == ext {
			return true
		}
	}
	return false
}

func (w *Watcher) mark(path string, at time.Time) {
	w.mu.Lock()
	w.pending[path] = at
	w.mu.Unlock()
}

// due removes and returns the pending paths quiet for at least Debounce.
func (w *Watcher) due(now time.Time) []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	var paths []string
	for path, changed := range w.pending {
		if now.Sub(changed) >= w.opts.Debounce {
			paths = append(paths, path)
			delete(w.pending, path)
		}
	}
	return paths
}

// ingestFile reads and ingests one file. ok is false when the file was
// skipped without an ingest attempt.
func (w *Watcher) ingestFile(ctx context.Context, path string) (Event, bool) {
	info, err := os.Stat(path)
	if err != nil {
		return Event{}, false
	}
	if info.Size() > w.opts.MaxFileSize {
		log.Printf("WATCH_SKIP | path=%s size=%d reason=too_large", path, info.Size())
		return Event{}, false
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Event{Path: path, Err: err}, true
	}

	result, err := w.ingester.Ingest(ctx, string(data))
	if errors.Is(err, controller.ErrBusy) {
		// another ingestion owns the controller; try again after it settles
		w.mark(path, time.Now())
		return Event{}, false
	}
	if err != nil {
		log.Printf("WATCH_INGEST_ERROR | path=%s err=%v", path, err)
	} else {
		log.Printf("WATCH_INGEST | path=%s chunks=%d", path, result.Chunks)
	}
	return Event{Path: path, Result: result, Err: err}, true
}
