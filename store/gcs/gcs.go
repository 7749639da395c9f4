// Package gcs implements a backend on Google Cloud Storage.
package gcs

import (
	"bytes"
	"context"
	stderrs "errors"
	"io"

	"cloud.google.com/go/storage"
	"github.com/pkg/errors"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/ooici/cas/store"
)

var _ store.Backend = &Store{}

// Store is a Google Cloud Storage-based backend.
// Each key is the name of one object in the bucket.
type Store struct {
	bucket *storage.BucketHandle
}

// New produces a new Store.
func New(bucket *storage.BucketHandle) *Store {
	return &Store{bucket: bucket}
}

// Get gets the value stored under key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	r, err := s.bucket.Object(key).NewReader(ctx)
	if stderrs.Is(err, storage.ErrObjectNotExist) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "reading info of object %s", key)
	}
	defer r.Close()

	b := make([]byte, r.Attrs.Size)
	_, err = io.ReadFull(r, b)
	return b, errors.Wrapf(err, "reading contents of object %s", key)
}

// Put stores a value under key.
func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	w := s.bucket.Object(key).NewWriter(ctx)
	if _, err := io.Copy(w, bytes.NewReader(value)); err != nil {
		w.Close()
		return errors.Wrapf(err, "writing object %s", key)
	}
	return errors.Wrapf(w.Close(), "closing object %s", key)
}

// Remove deletes the value under key, if any.
func (s *Store) Remove(ctx context.Context, key string) error {
	err := s.bucket.Object(key).Delete(ctx)
	if stderrs.Is(err, storage.ErrObjectNotExist) {
		return nil
	}
	return errors.Wrapf(err, "deleting object %s", key)
}

// Query produces the keys matching pattern, in lexicographic order.
// Google Cloud Storage can filter by object-name prefix but not by pattern,
// so the listing is narrowed to the pattern's literal prefix
// and the rest is matched here.
func (s *Store) Query(ctx context.Context, pattern string) ([]string, error) {
	m, err := store.Compile(pattern)
	if err != nil {
		return nil, err
	}

	var (
		keys []string
		iter = s.bucket.Objects(ctx, &storage.Query{Prefix: m.Prefix})
	)
	for {
		attrs, err := iter.Next()
		if stderrs.Is(err, iterator.Done) {
			return m.Filter(keys), nil
		}
		if err != nil {
			return nil, errors.Wrap(err, "iterating over objects")
		}
		keys = append(keys, attrs.Name)
	}
}

func init() {
	store.Register("gcs", func(ctx context.Context, conf map[string]interface{}) (store.Backend, error) {
		creds, err := store.ConfString(conf, "creds")
		if err != nil {
			return nil, err
		}
		bucketName, err := store.ConfString(conf, "bucket")
		if err != nil {
			return nil, err
		}
		c, err := storage.NewClient(ctx, option.WithCredentialsFile(creds))
		if err != nil {
			return nil, errors.Wrap(err, "creating cloud storage client")
		}
		return New(c.Bucket(bucketName)), nil
	})
}
