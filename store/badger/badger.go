// Package badger implements a backend in a BadgerDB database.
package badger

import (
	"context"
	stderrs "errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/pkg/errors"

	"github.com/ooici/cas/store"
)

var _ store.Backend = &Store{}

// Store is a BadgerDB-based backend.
type Store struct {
	db *badger.DB
}

// New produces a new Store using db for storage.
func New(db *badger.DB) *Store {
	return &Store{db: db}
}

// Get gets the value stored under key.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	var val []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if stderrs.Is(err, badger.ErrKeyNotFound) {
			return store.ErrNotFound
		}
		if err != nil {
			return err
		}
		val, err = item.ValueCopy(nil)
		return err
	})
	if stderrs.Is(err, store.ErrNotFound) {
		return nil, err
	}
	return val, errors.Wrapf(err, "getting %s", key)
}

// Put stores a value under key.
func (s *Store) Put(_ context.Context, key string, value []byte) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
	return errors.Wrapf(err, "storing %s", key)
}

// Remove deletes the value under key, if any.
func (s *Store) Remove(_ context.Context, key string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	return errors.Wrapf(err, "removing %s", key)
}

// Query produces the keys matching pattern, in lexicographic order.
// Respects context cancellation during iteration.
func (s *Store) Query(ctx context.Context, pattern string) ([]string, error) {
	m, err := store.Compile(pattern)
	if err != nil {
		return nil, err
	}

	var keys []string
	err = s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(m.Prefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			if k := string(it.Item().Key()); m.Match(k) {
				keys = append(keys, k)
			}
		}
		return nil
	})
	return keys, errors.Wrap(err, "querying keys")
}

func init() {
	store.Register("badger", func(_ context.Context, conf map[string]interface{}) (store.Backend, error) {
		var opts badger.Options
		if store.ConfBool(conf, "inmemory") {
			opts = badger.DefaultOptions("").WithInMemory(true)
		} else {
			dir, err := store.ConfString(conf, "dir")
			if err != nil {
				return nil, err
			}
			opts = badger.DefaultOptions(dir)
		}
		db, err := badger.Open(opts.WithLogger(nil))
		if err != nil {
			return nil, errors.Wrap(err, "opening badger db")
		}
		return New(db), nil
	})
}
