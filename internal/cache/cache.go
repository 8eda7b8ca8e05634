// Package cache provides the in-memory collection caches of the
// synchronized store. Each collection gets its own Map so a write to one
// collection never blocks readers of another.
package cache

import (
	"sync"
	"sync/atomic"
)

// Map is a concurrency-safe keyed container for one entity collection.
//
// The contents live behind an atomic pointer and every mutation installs a
// fresh map, so readers never take a lock and can never observe a
// partially replaced collection. Writers (the subscription manager and the
// mutation gateway) serialize on a mutex.
type Map[T any] struct {
	mu   sync.Mutex
	snap atomic.Pointer[map[string]T]
}

// New returns an empty Map.
func New[T any]() *Map[T] {
	m := &Map[T]{}
	empty := map[string]T{}
	m.snap.Store(&empty)
	return m
}

// ReplaceAll atomically swaps the entire contents. The input is copied, so
// the caller may keep mutating its map afterwards.
func (m *Map[T]) ReplaceAll(entries map[string]T) {
	next := make(map[string]T, len(entries))
	for k, v := range entries {
		next[k] = v
	}

	m.mu.Lock()
	m.snap.Store(&next)
	m.mu.Unlock()
}

// Get returns the entity stored under id.
func (m *Map[T]) Get(id string) (T, bool) {
	v, ok := (*m.snap.Load())[id]
	return v, ok
}

// List returns all entities. Order is unspecified and callers must not
// depend on it.
func (m *Map[T]) List() []T {
	cur := *m.snap.Load()
	out := make([]T, 0, len(cur))
	for _, v := range cur {
		out = append(out, v)
	}
	return out
}

// Len returns the number of cached entities.
func (m *Map[T]) Len() int {
	return len(*m.snap.Load())
}

// Snapshot returns a copy of the current contents.
func (m *Map[T]) Snapshot() map[string]T {
	cur := *m.snap.Load()
	out := make(map[string]T, len(cur))
	for k, v := range cur {
		out[k] = v
	}
	return out
}

// Upsert stores one entity. Reserved for the mutation gateway after a
// confirmed remote write; observers never mutate the cache.
func (m *Map[T]) Upsert(id string, v T) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur := *m.snap.Load()
	next := make(map[string]T, len(cur)+1)
	for k, e := range cur {
		next[k] = e
	}
	next[id] = v
	m.snap.Store(&next)
}

// Remove drops one entity. Reserved for the mutation gateway after a
// confirmed remote delete.
func (m *Map[T]) Remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur := *m.snap.Load()
	next := make(map[string]T, len(cur))
	for k, e := range cur {
		if k != id {
			next[k] = e
		}
	}
	m.snap.Store(&next)
}
