// Package logging implements a backend that delegates everything to a nested backend,
// logging operations as they happen.
package logging

import (
	"context"
	"log"

	"github.com/ooici/cas/store"
)

var _ store.Backend = &Store{}

type Store struct {
	s store.Backend
}

func New(s store.Backend) *Store {
	return &Store{s: s}
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := s.s.Get(ctx, key)
	if err != nil {
		log.Printf("ERROR Get %s: %s", key, err)
	} else {
		log.Printf("Get %s, %d bytes", key, len(b))
	}
	return b, err
}

func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	err := s.s.Put(ctx, key, value)
	if err != nil {
		log.Printf("ERROR in Put %s: %s", key, err)
	} else {
		log.Printf("Put %s, %d bytes", key, len(value))
	}
	return err
}

func (s *Store) Remove(ctx context.Context, key string) error {
	err := s.s.Remove(ctx, key)
	if err != nil {
		log.Printf("ERROR in Remove %s: %s", key, err)
	} else {
		log.Printf("Remove %s", key)
	}
	return err
}

func (s *Store) Query(ctx context.Context, pattern string) ([]string, error) {
	keys, err := s.s.Query(ctx, pattern)
	if err != nil {
		log.Printf("ERROR in Query %s: %s", pattern, err)
	} else {
		log.Printf("Query %s: %d keys", pattern, len(keys))
	}
	return keys, err
}

func init() {
	store.Register("logging", func(ctx context.Context, conf map[string]interface{}) (store.Backend, error) {
		nested, err := store.ConfNested(ctx, conf, "nested")
		if err != nil {
			return nil, err
		}
		return New(nested), nil
	})
}
