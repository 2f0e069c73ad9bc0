// Package resource loads the read-only reference data the extractors depend
// on: pipe-delimited dictionaries, the gzip-compressed city gazetteer and
// taxonomy JSON files. Defaults are compiled into the binary; a data
// directory can override them file by file.
//
// Every dataset sits behind a Store: loaded lazily on first access, cached
// for the process lifetime, and swapped atomically so concurrent readers
// never observe partial state.
package resource

import "sync"

// Store is a lazily-initialized, process-wide cache for one dataset.
type Store[T any] struct {
	load func() (T, error)

	mu     sync.Mutex
	value  T
	loaded bool
}

// NewStore wraps a load function. The function runs at most once per cache
// generation; concurrent first readers block until the single load finishes.
func NewStore[T any](load func() (T, error)) *Store[T] {
	return &Store[T]{load: load}
}

// Get returns the cached value, loading it on first access. A failed load is
// not cached: the next Get retries.
func (s *Store[T]) Get() (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loaded {
		return s.value, nil
	}
	value, err := s.load()
	if err != nil {
		var zero T
		return zero, err
	}
	s.value = value
	s.loaded = true
	return s.value, nil
}

// Invalidate drops the cached value so the next Get reloads. Primarily a
// test hook, also used after the data directory changes.
func (s *Store[T]) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	var zero T
	s.value = zero
	s.loaded = false
}
