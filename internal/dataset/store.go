package dataset

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
)

// LoadObserver is notified after every load attempt.
type LoadObserver interface {
	ObserveLoad(rows int, elapsed time.Duration, err error)
}

type Option func(*Store)

// WithReloadOnChange makes the store reload when the source file's size or
// modification time changes. Without it the file is read exactly once.
func WithReloadOnChange(enabled bool) Option {
	return func(s *Store) { s.reloadOnChange = enabled }
}

func WithWorkers(n int) Option {
	return func(s *Store) { s.loader = NewLoader(n) }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

func WithObserver(o LoadObserver) Option {
	return func(s *Store) { s.observer = o }
}

// Store serves one loaded table to many readers. The first caller loads it;
// concurrent callers wait on the same load. Failed loads are not cached.
type Store struct {
	path           string
	loader         *Loader
	reloadOnChange bool
	logger         *slog.Logger
	observer       LoadObserver

	group singleflight.Group
	mu    sync.RWMutex
	table *Table

	loads       atomic.Int64
	lastElapsed atomic.Int64
}

func NewStore(path string, opts ...Option) *Store {
	s := &Store{
		path:   path,
		loader: NewLoader(defaultWorkers),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "dataset_store")
	return s
}

// Table returns the cached table, loading it on first use.
func (s *Store) Table(ctx context.Context) (*Table, error) {
	s.mu.RLock()
	cached := s.table
	s.mu.RUnlock()

	if cached != nil && !s.stale(cached) {
		return cached, nil
	}

	// The shared load outlives any single caller; a caller that gives up
	// stops waiting without failing the others.
	ch := s.group.DoChan(s.path, func() (any, error) {
		s.mu.RLock()
		current := s.table
		s.mu.RUnlock()
		if current != nil && current != cached {
			return current, nil
		}
		return s.load(context.WithoutCancel(ctx))
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Table), nil
	}
}

// ReloadOnChange reports whether the cached table can be replaced while
// the process runs.
func (s *Store) ReloadOnChange() bool {
	return s.reloadOnChange
}

// Loaded reports whether a table is cached.
func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.table != nil
}

func (s *Store) stale(t *Table) bool {
	if !s.reloadOnChange {
		return false
	}
	info, err := os.Stat(s.path)
	if err != nil {
		// Keep serving the last good table; the next successful stat decides.
		return false
	}
	return !t.Source().Same(Source{Path: s.path, Size: info.Size(), ModTime: info.ModTime()})
}

func (s *Store) load(ctx context.Context) (*Table, error) {
	start := time.Now()
	s.logger.Info("loading dataset", "path", s.path)

	table, err := s.loader.Load(ctx, s.path)
	elapsed := time.Since(start)
	if s.observer != nil {
		rows := 0
		if table != nil {
			rows = table.Len()
		}
		s.observer.ObserveLoad(rows, elapsed, err)
	}
	if err != nil {
		s.logger.Error("dataset load failed", "path", s.path, "error", err)
		return nil, fmt.Errorf("load %s: %w", s.path, err)
	}

	s.mu.Lock()
	s.table = table
	s.mu.Unlock()
	s.loads.Add(1)
	s.lastElapsed.Store(int64(elapsed))

	s.logger.Info("dataset loaded",
		"path", s.path,
		"records", table.Len(),
		"duration", elapsed,
		"rate", fmt.Sprintf("%.0f records/sec", float64(table.Len())/elapsed.Seconds()))
	return table, nil
}

func (s *Store) Stats() map[string]any {
	s.mu.RLock()
	table := s.table
	s.mu.RUnlock()

	stats := map[string]any{
		"path":             s.path,
		"loaded":           table != nil,
		"loads":            s.loads.Load(),
		"last_load":        time.Duration(s.lastElapsed.Load()).String(),
		"reload_on_change": s.reloadOnChange,
	}
	if table != nil {
		stats["record_count"] = table.Len()
		stats["loaded_at"] = table.LoadedAt()
		stats["source"] = table.Source()
	}
	return stats
}
