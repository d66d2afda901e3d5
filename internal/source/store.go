package source

import (
	"context"
	"sync"
	"time"

	"monthcal/internal/agenda"
	"monthcal/internal/config"
	"monthcal/internal/ics"
	appLog "monthcal/internal/log"
)

// Store holds the agenda index built from the last load. Each reload builds
// a fresh index and swaps it in; readers keep using the index they got.
type Store struct {
	sources []config.SourceConfig
	fetcher *ics.Fetcher

	reloadMu sync.Mutex // serializes reloads

	mu       sync.RWMutex
	index    *agenda.Index
	loadedAt time.Time
	lastErr  error
}

// NewStore creates a store with an empty index. Call Reload to populate it.
func NewStore(sources []config.SourceConfig, fetcher *ics.Fetcher) *Store {
	return &Store{
		sources: sources,
		fetcher: fetcher,
		index:   agenda.BuildIndex(nil),
	}
}

// Reload re-reads every source and replaces the index. Sources that fail to
// load are left out of the new index; the error describes them.
func (s *Store) Reload(ctx context.Context) error {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	start := time.Now()
	events, err := Load(ctx, s.sources, s.fetcher)
	idx := agenda.BuildIndex(events)

	s.mu.Lock()
	s.index = idx
	s.loadedAt = time.Now()
	s.lastErr = err
	s.mu.Unlock()

	appLog.Info("events reloaded",
		"event_count", idx.Len(),
		"days", len(idx.Keys()),
		"sources", len(s.sources),
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	return err
}

// Index returns the current index.
func (s *Store) Index() *agenda.Index {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index
}

// LoadedAt is the time of the last reload, zero before the first.
func (s *Store) LoadedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadedAt
}

// LastError is the error of the last reload, if any.
func (s *Store) LastError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// LocalPaths returns the resolved paths of file-backed sources.
func (s *Store) LocalPaths() []string {
	paths := make([]string, 0, len(s.sources))
	for _, src := range s.sources {
		if src.Path == "" {
			continue
		}
		p, err := src.ResolvedPath()
		if err != nil {
			appLog.Error("cannot resolve source path", err, "id", src.ID)
			continue
		}
		paths = append(paths, p)
	}
	return paths
}
