// Package mem implements an in-memory backend.
package mem

import (
	"context"
	"sync"

	"github.com/ooici/cas/store"
)

var _ store.Backend = &Store{}

// Store is a memory-based implementation of a backend.
type Store struct {
	mu   sync.Mutex
	vals map[string][]byte
}

// New produces a new Store.
func New() *Store {
	return &Store{vals: make(map[string][]byte)}
}

// Get gets the value stored under key.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.vals[key]
	if !ok {
		return nil, store.ErrNotFound
	}
	return clone(v), nil
}

// Put stores a value under key.
func (s *Store) Put(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.vals[key] = clone(value)
	return nil
}

// Remove deletes the value under key, if any.
func (s *Store) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.vals, key)
	return nil
}

// Query produces the keys matching pattern, in lexicographic order.
func (s *Store) Query(_ context.Context, pattern string) ([]string, error) {
	m, err := store.Compile(pattern)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	keys := make([]string, 0, len(s.vals))
	for k := range s.vals {
		keys = append(keys, k)
	}
	s.mu.Unlock()

	return m.Filter(keys), nil
}

func clone(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

func init() {
	store.Register("mem", func(context.Context, map[string]interface{}) (store.Backend, error) {
		return New(), nil
	})
}
