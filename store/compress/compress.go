// Package compress implements a backend that compresses and uncompresses values
// on their way into and out of a nested backend.
package compress

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/ooici/cas/store"
)

var _ store.Backend = &Store{}

// Each stored value begins with one of these header bytes.
const (
	raw        byte = 0
	compressed byte = 1
)

// Store compresses values with a Compressor before handing them to a nested backend.
// A value that does not shrink is stored as-is.
// Keys are not transformed, so queries pass straight through.
type Store struct {
	s store.Backend
	c Compressor
}

// Compressor tells how to compress a value on its way into a Store
// and uncompress it on its way out.
// Uncompress must be the inverse of Compress.
type Compressor interface {
	Compress([]byte) ([]byte, error)
	Uncompress([]byte) ([]byte, error)
}

// New produces a new Store wrapping s.
func New(s store.Backend, c Compressor) *Store {
	return &Store{s: s, c: c}
}

// Get gets the value stored under key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := s.s.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if len(val) == 0 {
		return nil, fmt.Errorf("value for %s has no compression header", key)
	}
	switch val[0] {
	case raw:
		return val[1:], nil
	case compressed:
		out, err := s.c.Uncompress(val[1:])
		return out, errors.Wrapf(err, "uncompressing %s", key)
	default:
		return nil, fmt.Errorf("value for %s has unknown compression header %d", key, val[0])
	}
}

// Put stores a value under key.
func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	c, err := s.c.Compress(value)
	if err != nil {
		return errors.Wrapf(err, "compressing %s", key)
	}

	var stored []byte
	if len(c) < len(value) {
		stored = append([]byte{compressed}, c...)
	} else {
		stored = append([]byte{raw}, value...)
	}
	return s.s.Put(ctx, key, stored)
}

// Remove deletes the value under key, if any.
func (s *Store) Remove(ctx context.Context, key string) error {
	return s.s.Remove(ctx, key)
}

// Query produces the keys matching pattern, in lexicographic order.
func (s *Store) Query(ctx context.Context, pattern string) ([]string, error) {
	return s.s.Query(ctx, pattern)
}

func init() {
	store.Register("compress", func(ctx context.Context, conf map[string]interface{}) (store.Backend, error) {
		nested, err := store.ConfNested(ctx, conf, "nested")
		if err != nil {
			return nil, err
		}
		compressor, ok := conf["compressor"].(string)
		if !ok {
			compressor = "zstd"
		}
		level, err := store.ConfInt(conf, "level", -1)
		if err != nil {
			return nil, err
		}

		var c Compressor
		switch compressor {
		case "zstd":
			c, err = NewZstd(level)
			if err != nil {
				return nil, err
			}

		case "flate":
			c = Flate{Level: level}

		case "lzw":
			c = LZW{}

		default:
			return nil, fmt.Errorf(`unknown compressor "%s"`, compressor)
		}
		return New(nested, c), nil
	})
}
