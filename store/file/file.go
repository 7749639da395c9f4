// Package file implements a backend as a directory of files.
package file

import (
	"context"
	"encoding/hex"
	"os"
	"path/filepath"

	"github.com/bobg/flock"
	"github.com/pkg/errors"

	"github.com/ooici/cas/store"
)

var _ store.Backend = &Store{}

// Store is a file-based backend.
// Each value is a file beneath root,
// named by the hex encoding of its key.
// Hex preserves the byte order of keys,
// so a sorted directory listing is a sorted key listing.
type Store struct {
	root    string
	flocker flock.Locker
}

// New produces a new Store storing data beneath root.
func New(root string) *Store {
	return &Store{root: root}
}

func (s *Store) valroot() string {
	return filepath.Join(s.root, "vals")
}

func (s *Store) valpath(key string) string {
	return filepath.Join(s.valroot(), hex.EncodeToString([]byte(key)))
}

func (s *Store) lockpath() string {
	return filepath.Join(s.root, "lock")
}

// Get gets the value stored under key.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	path := s.valpath(key)
	val, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, store.ErrNotFound
	}
	return val, errors.Wrapf(err, "reading %s", path)
}

// Put stores a value under key.
// The value is written to a temporary file and renamed into place,
// so readers never see a partial value.
func (s *Store) Put(_ context.Context, key string, value []byte) error {
	if err := os.MkdirAll(s.valroot(), 0755); err != nil {
		return errors.Wrapf(err, "ensuring path %s exists", s.valroot())
	}

	f, err := os.CreateTemp(s.valroot(), ".tmp-")
	if err != nil {
		return errors.Wrap(err, "creating temp file")
	}
	tmpname := f.Name()
	defer os.Remove(tmpname)

	if _, err := f.Write(value); err != nil {
		f.Close()
		return errors.Wrapf(err, "writing data to %s", tmpname)
	}
	if err := f.Close(); err != nil {
		return errors.Wrapf(err, "closing %s", tmpname)
	}

	if err := s.flocker.Lock(s.lockpath()); err != nil {
		return errors.Wrap(err, "locking store")
	}
	defer s.flocker.Unlock(s.lockpath())

	path := s.valpath(key)
	return errors.Wrapf(os.Rename(tmpname, path), "renaming %s to %s", tmpname, path)
}

// Remove deletes the value under key, if any.
func (s *Store) Remove(_ context.Context, key string) error {
	if err := s.flocker.Lock(s.lockpath()); err != nil {
		return errors.Wrap(err, "locking store")
	}
	defer s.flocker.Unlock(s.lockpath())

	path := s.valpath(key)
	err := os.Remove(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return errors.Wrapf(err, "removing %s", path)
}

// Query produces the keys matching pattern, in lexicographic order.
func (s *Store) Query(ctx context.Context, pattern string) ([]string, error) {
	m, err := store.Compile(pattern)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(s.valroot())
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "reading dir %s", s.valroot())
	}

	var keys []string
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if e.IsDir() {
			continue
		}
		k, err := hex.DecodeString(e.Name())
		if err != nil {
			// Temp files and strays.
			continue
		}
		keys = append(keys, string(k))
	}
	return m.Filter(keys), nil
}

func init() {
	store.Register("file", func(_ context.Context, conf map[string]interface{}) (store.Backend, error) {
		root, err := store.ConfString(conf, "root")
		if err != nil {
			return nil, err
		}
		return New(root), nil
	})
}
