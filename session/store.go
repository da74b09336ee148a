package session

import (
	"context"
	"encoding/json"
	"maps"
	"slices"
	"sync"
)

// Store provides thread-safe key/value state for one session with pluggable
// persistence. Reads and writes hit an in-memory cache; Sync and Reload move
// data to and from the Adapter.
type Store struct {
	mu      sync.RWMutex
	adapter Adapter
	cache   map[string]any
}

// New creates a Store backed by adapter.
// If adapter is nil, a MemoryAdapter is used.
func New(adapter Adapter) *Store {
	if adapter == nil {
		adapter = NewMemoryAdapter()
	}
	return &Store{
		adapter: adapter,
		cache:   make(map[string]any),
	}
}

// NewFrom creates an in-memory Store seeded with data.
func NewFrom(data map[string]any) *Store {
	s := New(nil)
	maps.Copy(s.cache, data)
	return s
}

// Get retrieves a value.
func (s *Store) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.cache[key]
	return v, ok
}

// GetOrInit returns the value stored under key, first storing def if the key
// is absent. A later call with a different default returns the existing
// value unchanged.
func (s *Store) GetOrInit(key string, def any) any {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.cache[key]; ok {
		return v
	}
	s.cache[key] = def
	return def
}

// Set stores a value, overwriting any existing one.
func (s *Store) Set(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache[key] = value
}

// Update replaces the value under key with fn(current, present) while
// holding the write lock, and returns the new value. It is the single
// mutator for fields that concurrent steps append to.
func (s *Store) Update(key string, fn func(cur any, ok bool) any) any {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.cache[key]
	next := fn(cur, ok)
	s.cache[key] = next
	return next
}

// Delete removes a key.
func (s *Store) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.cache, key)
}

// Has returns true if the key exists.
func (s *Store) Has(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.cache[key]
	return ok
}

// Keys returns all keys in sorted order.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.cache))
}

// Len returns the number of keys.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cache)
}

// Data returns a shallow copy of the cache.
func (s *Store) Data() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.cache)
}

// Sync persists the cache to the adapter.
func (s *Store) Sync(ctx context.Context) error {
	s.mu.RLock()
	data := make(map[string]json.RawMessage, len(s.cache))
	for k, v := range s.cache {
		raw, err := json.Marshal(v)
		if err != nil {
			s.mu.RUnlock()
			return &SerializationError{Key: k, Err: err}
		}
		data[k] = raw
	}
	s.mu.RUnlock()
	return s.adapter.Save(ctx, data)
}

// Reload replaces the cache with the adapter's contents. Values come back as
// their generic JSON forms; use [Get] with a concrete type to read them.
func (s *Store) Reload(ctx context.Context) error {
	data, err := s.adapter.Load(ctx)
	if err != nil {
		return err
	}

	cache := make(map[string]any, len(data))
	for k, raw := range data {
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			return &SerializationError{Key: k, Err: err}
		}
		cache[k] = v
	}

	s.mu.Lock()
	s.cache = cache
	s.mu.Unlock()
	return nil
}

// Adapter returns the underlying adapter.
func (s *Store) Adapter() Adapter {
	return s.adapter
}
