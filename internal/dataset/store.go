package dataset

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"airdash/internal/metrics"
)

// Store holds the current Table snapshot for the configured CSV path.
// Handlers read snapshots; Reload swaps them atomically, so a snapshot
// never changes under a reader.
type Store struct {
	path string

	mu         sync.RWMutex
	table      *Table
	err        error
	loadedAt   time.Time
	generation uint64
}

func NewStore(path string) *Store {
	return &Store{path: path, table: NewTable(nil)}
}

// Path returns the CSV path the store loads from.
func (s *Store) Path() string { return s.path }

// Reload reads the CSV from disk and swaps the snapshot. On failure the
// previous snapshot is kept and the error is retained for Snapshot callers.
func (s *Store) Reload() error {
	table, err := Load(s.path)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.err = err
	if err != nil {
		metrics.DatasetReloadsTotal.WithLabelValues("error").Inc()
		return err
	}
	s.table = table
	s.loadedAt = time.Now().UTC()
	metrics.DatasetReloadsTotal.WithLabelValues("ok").Inc()
	metrics.DatasetRows.Set(float64(table.Len()))
	return nil
}

// Snapshot returns the current table and the error from the most recent
// load attempt. The table is the last good one; it is empty when no load
// has ever succeeded.
func (s *Store) Snapshot() (*Table, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.table, s.err
}

// Generation increments on every load attempt. Cache keys include it, so a
// reload invalidates memoized results without explicit purging.
func (s *Store) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}

// LoadedAt returns when the last successful load finished.
func (s *Store) LoadedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadedAt
}

// watchDebounce coalesces the event bursts editors and atomic writers
// produce for a single save.
const watchDebounce = 250 * time.Millisecond

// Watch reloads the store whenever the CSV changes on disk. It watches the
// parent directory because most tools replace the file rather than write it
// in place. Watch returns once the watcher is running; the goroutine stops
// when ctx is done.
func (s *Store) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	dir := filepath.Dir(s.path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	target := filepath.Clean(s.path)
	go func() {
		defer watcher.Close()

		var mu sync.Mutex
		var pending *time.Timer
		schedule := func() {
			mu.Lock()
			defer mu.Unlock()
			if pending != nil {
				pending.Stop()
			}
			pending = time.AfterFunc(watchDebounce, func() {
				if err := s.Reload(); err != nil {
					slog.Error("dataset reload failed", "path", s.path, "error", err)
					return
				}
				table, _ := s.Snapshot()
				slog.Info("dataset reloaded", "path", s.path, "rows", table.Len())
			})
		}

		for {
			select {
			case <-ctx.Done():
				mu.Lock()
				if pending != nil {
					pending.Stop()
				}
				mu.Unlock()
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Rename) {
					continue
				}
				schedule()
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				slog.Warn("dataset watcher error", "error", err)
			}
		}
	}()
	return nil
}
