package agent

import (
	"maps"
	"sync"
)

// Key is a typed storage key. Keys are unique per declared name; two keys
// with the same name address the same slot.
type Key[T any] struct {
	name string
}

// NewKey declares a typed storage key.
func NewKey[T any](name string) Key[T] {
	return Key[T]{name: name}
}

// Name returns the key identity.
func (k Key[T]) Name() string { return k.name }

// Storage is the key/value side channel nodes use to pass values outside
// the graph's input/output flow.
type Storage struct {
	mu     sync.RWMutex
	values map[string]any
}

// NewStorage creates an empty storage.
func NewStorage() *Storage {
	return &Storage{values: make(map[string]any)}
}

// Clone returns an independent copy for a forked branch. Values are copied
// by reference; nodes storing mutable values across forks must clone them
// themselves.
func (s *Storage) Clone() *Storage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return &Storage{values: maps.Clone(s.values)}
}

// Set stores a value under a typed key.
func Set[T any](s *Storage, key Key[T], value T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key.name] = value
}

// Get retrieves the value stored under a typed key.
func Get[T any](s *Storage, key Key[T]) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	raw, ok := s.values[key.name]
	if !ok {
		var zero T
		return zero, false
	}
	value, ok := raw.(T)
	return value, ok
}

// Delete removes the value stored under a typed key.
func Delete[T any](s *Storage, key Key[T]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key.name)
}
