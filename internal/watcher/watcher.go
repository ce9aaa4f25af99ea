package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"footage-tracker/internal/ingest"
	"footage-tracker/internal/logging"
	"footage-tracker/internal/metrics"
)

// Watcher is the long-lived filesystem event source. It subscribes
// recursively to the watch root and feeds creation events to the Ingestor.
// It owns its start/stop lifecycle; there is no package-level watcher handle.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	ing       *ingest.Ingestor
	rootPath  string

	stopCh  chan struct{}
	doneCh  chan struct{}
	mu      sync.Mutex
	started bool
	stopped bool
}

// New creates a Watcher feeding ing.
func New(ing *ingest.Ingestor) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}

	return &Watcher{
		fsWatcher: fsw,
		ing:       ing,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}, nil
}

// Start subscribes to root and all directories beneath it, then blocks in the
// event loop until Stop is called or ctx is cancelled. Run it in its own
// goroutine: event delivery must never block on, or be blocked by, request
// handling.
func (w *Watcher) Start(ctx context.Context, root string) error {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("resolve watch root: %w", err)
	}

	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return fmt.Errorf("watcher already started")
	}
	w.started = true
	w.rootPath = absRoot
	w.mu.Unlock()

	defer close(w.doneCh)

	if err := w.watchTree(ctx, absRoot, false); err != nil {
		return fmt.Errorf("subscribe to %s: %w", absRoot, err)
	}

	logging.Info("Watching directory: %s", absRoot)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stopCh:
			return nil
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(ctx, event)
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return nil
			}
			metrics.WatcherErrorsTotal.Inc()
			logging.Error("Watcher error: %v", err)
		}
	}
}

// handleEvent dispatches one fsnotify event.
//
// Create drives ingestion; a file moved into the tree also surfaces as
// Create, which covers the destination side of a move. Rename and Remove
// fire on the source path and deliberately change nothing: the prior record,
// if any, stays in the ledger describing a now-nonexistent location. Records
// are never deleted or repaired here.
func (w *Watcher) handleEvent(ctx context.Context, event fsnotify.Event) {
	switch {
	case event.Op&fsnotify.Create != 0:
		metrics.WatcherEventsTotal.WithLabelValues("create").Inc()
		logging.Debug("Created: %s", event.Name)

		w.ing.Ingest(ctx, event.Name)

		// New directories need their own subscription, and anything created
		// inside them before the watch attached would otherwise be missed.
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.watchTree(ctx, event.Name, true); err != nil {
				logging.Warn("Watch new directory %s: %v", event.Name, err)
			}
		}

	case event.Op&fsnotify.Rename != 0:
		metrics.WatcherEventsTotal.WithLabelValues("rename").Inc()
		logging.Debug("Moved away: %s (record left untouched)", event.Name)

	case event.Op&fsnotify.Remove != 0:
		metrics.WatcherEventsTotal.WithLabelValues("remove").Inc()
		logging.Debug("Removed: %s (record left untouched)", event.Name)

	case event.Op&fsnotify.Write != 0:
		// Size and timestamps are fixed at discovery time; writes are not
		// re-ingested.
		metrics.WatcherEventsTotal.WithLabelValues("write").Inc()

	case event.Op&fsnotify.Chmod != 0:
		metrics.WatcherEventsTotal.WithLabelValues("chmod").Inc()
	}
}

// watchTree adds every directory under root (inclusive) to the subscription.
// When ingestEntries is set, entries found during the walk are ingested too,
// closing the gap for trees that appeared before their watch attached.
// Unreadable entries are skipped without terminating the subscription.
func (w *Watcher) watchTree(ctx context.Context, root string, ingestEntries bool) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			logging.Warn("Watcher: skipping unreadable entry %s: %v", path, err)
			return nil
		}

		if ingestEntries && path != root {
			w.ing.Ingest(ctx, path)
		}

		if !d.IsDir() {
			return nil
		}

		if err := w.fsWatcher.Add(path); err != nil {
			if path == root {
				return err
			}
			logging.Warn("Watcher: cannot watch %s: %v", path, err)
			return nil
		}
		metrics.WatcherDirsWatched.Inc()
		return nil
	})
}

// Stop shuts the watcher down: no further events are accepted and the event
// loop quiesces before Stop returns. Safe to call more than once.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	w.stopped = true
	started := w.started
	w.mu.Unlock()

	close(w.stopCh)
	if err := w.fsWatcher.Close(); err != nil {
		logging.Warn("Watcher close: %v", err)
	}

	if started {
		<-w.doneCh
	}
	logging.Info("Stopped filesystem monitoring")
}

// IsHealthy reports whether the watcher is running. Used by the readiness
// probe.
func (w *Watcher) IsHealthy() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.started && !w.stopped
}

// RootPath returns the root path being watched.
func (w *Watcher) RootPath() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.rootPath
}
