// Package lru implements a backend that acts as a least-recently-used cache for a nested backend.
package lru

import (
	"context"

	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"

	"github.com/ooici/cas/store"
)

var _ store.Backend = &Store{}

// Store implements a memory-based least-recently-used cache for a backend.
// Writes and removals pass through to the underlying backend.
// Queries always go to the underlying backend.
type Store struct {
	c *lru.Cache // key->[]byte
	s store.Backend
}

// New produces a new Store backed by s and caching up to size values.
func New(s store.Backend, size int) (*Store, error) {
	c, err := lru.New(size)
	if err != nil {
		return nil, errors.Wrap(err, "creating cache")
	}
	return &Store{s: s, c: c}, nil
}

// Get gets the value stored under key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if got, ok := s.c.Get(key); ok {
		return clone(got.([]byte)), nil
	}
	val, err := s.s.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	s.c.Add(key, clone(val))
	return val, nil
}

// Put stores a value under key.
func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	if err := s.s.Put(ctx, key, value); err != nil {
		s.c.Remove(key)
		return err
	}
	s.c.Add(key, clone(value))
	return nil
}

// Remove deletes the value under key, if any.
func (s *Store) Remove(ctx context.Context, key string) error {
	s.c.Remove(key)
	return s.s.Remove(ctx, key)
}

// Query produces the keys matching pattern, in lexicographic order.
func (s *Store) Query(ctx context.Context, pattern string) ([]string, error) {
	return s.s.Query(ctx, pattern)
}

func clone(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

func init() {
	store.Register("lru", func(ctx context.Context, conf map[string]interface{}) (store.Backend, error) {
		size, err := store.ConfInt(conf, "size", 0)
		if err != nil {
			return nil, err
		}
		if size <= 0 {
			return nil, errors.New(`missing or non-positive "size" parameter`)
		}
		nested, err := store.ConfNested(ctx, conf, "nested")
		if err != nil {
			return nil, err
		}
		return New(nested, size)
	})
}
