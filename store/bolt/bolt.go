// Package bolt implements a backend in a bbolt database file.
package bolt

import (
	"bytes"
	"context"

	"github.com/pkg/errors"
	"go.etcd.io/bbolt"

	"github.com/ooici/cas/store"
)

var _ store.Backend = &Store{}

// Store is a bbolt-based backend.
// All keys live in one bucket.
type Store struct {
	db     *bbolt.DB
	bucket []byte
}

// DefaultBucket is the bucket name used when none is configured.
const DefaultBucket = "cas"

// New produces a new Store keeping its data in the named bucket of db.
func New(db *bbolt.DB, bucket string) (*Store, error) {
	err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucket))
		return err
	})
	if err != nil {
		return nil, errors.Wrapf(err, "creating bucket %s", bucket)
	}
	return &Store{db: db, bucket: []byte(bucket)}, nil
}

// Get gets the value stored under key.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	var val []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		k, v := tx.Bucket(s.bucket).Cursor().Seek([]byte(key))
		if k == nil || !bytes.Equal(k, []byte(key)) || v == nil {
			return store.ErrNotFound
		}
		val = make([]byte, len(v))
		copy(val, v)
		return nil
	})
	return val, err
}

// Put stores a value under key.
func (s *Store) Put(_ context.Context, key string, value []byte) error {
	if value == nil {
		value = []byte{}
	}
	err := s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(s.bucket).Put([]byte(key), value)
	})
	return errors.Wrapf(err, "storing %s", key)
}

// Remove deletes the value under key, if any.
func (s *Store) Remove(_ context.Context, key string) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(s.bucket).Delete([]byte(key))
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
	err = s.db.View(func(tx *bbolt.Tx) error {
		var (
			c      = tx.Bucket(s.bucket).Cursor()
			prefix = []byte(m.Prefix)
		)
		for k, _ := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = c.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			if m.Match(string(k)) {
				keys = append(keys, string(k))
			}
		}
		return nil
	})
	return keys, errors.Wrap(err, "querying keys")
}

func init() {
	store.Register("bolt", func(_ context.Context, conf map[string]interface{}) (store.Backend, error) {
		path, err := store.ConfString(conf, "path")
		if err != nil {
			return nil, err
		}
		bucket, ok := conf["bucket"].(string)
		if !ok {
			bucket = DefaultBucket
		}
		db, err := bbolt.Open(path, 0600, nil)
		if err != nil {
			return nil, errors.Wrapf(err, "opening %s", path)
		}
		return New(db, bucket)
	})
}
