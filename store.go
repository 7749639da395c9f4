package cas

import (
	"bytes"
	"context"
	stderrs "errors"
	"regexp"
	"strings"

	"github.com/pkg/errors"

	"github.com/ooici/cas/store"
	"github.com/ooici/cas/store/namespace"
)

// Store is a content-addressable object store.
// It encodes and hashes objects on their way into a backend
// and verifies them on their way out.
//
// Objects live under the key "<namespace>.objs.<hex id>" of the backend.
// Any number of Stores with distinct namespaces may share one backend.
//
// Store adds no locking of its own.
// Concurrent Puts of equal content write the same bytes to the same key.
type Store struct {
	b   *namespace.Store
	reg Registry
}

// Option is the type of an option passed to New.
type Option func(*Store)

// WithRegistry makes a Store decode objects with reg instead of DefaultRegistry().
func WithRegistry(reg Registry) Option {
	return func(s *Store) {
		s.reg = reg
	}
}

// New produces a new Store over backend b, confined to namespace ns.
func New(b store.Backend, ns string, opts ...Option) *Store {
	s := &Store{
		b:   namespace.New(b, ns),
		reg: DefaultRegistry(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Namespace is the key prefix of s in its backend.
func (s *Store) Namespace() string {
	return s.b.Namespace()
}

const objsPrefix = ".objs."

func objKey(id ID) string {
	return objsPrefix + id.String()
}

// Put stores obj and returns its ID.
// Storing equal content twice writes the same bytes under the same key.
//
// Entries of a tree that carry live objects are not stored;
// see PutDeep.
func (s *Store) Put(ctx context.Context, obj Object) (ID, error) {
	var (
		enc = obj.Encode()
		id  = SHA1(enc)
	)
	if err := s.b.Put(ctx, objKey(id), enc); err != nil {
		return Zero, errors.Wrapf(err, "storing %s %s", obj.Type(), id)
	}
	return id, nil
}

// PutDeep stores obj after first storing,
// recursively,
// every live object attached to its tree entries.
// A tree is therefore never stored ahead of its children.
func (s *Store) PutDeep(ctx context.Context, obj Object) (ID, error) {
	if t, ok := obj.(*Tree); ok {
		for _, e := range t.entries {
			if e.Object == nil {
				continue
			}
			if _, err := s.PutDeep(ctx, e.Object); err != nil {
				return Zero, errors.Wrapf(err, "storing tree entry %s", e.Name)
			}
		}
	}
	return s.Put(ctx, obj)
}

// Get retrieves the object with the given ID.
// It is an ErrNotFound error if there is none.
// The stored bytes are hashed before anything else;
// if they do not hash to id,
// the result is an ErrIntegrity error and no object.
// Bytes that do hash to id must also decode to an object with that ID.
func (s *Store) Get(ctx context.Context, id ID) (Object, error) {
	enc, err := s.b.Get(ctx, objKey(id))
	if stderrs.Is(err, store.ErrNotFound) {
		return nil, errors.Wrapf(ErrNotFound, "object %s", id)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "getting object %s", id)
	}
	if got := SHA1(enc); got != id {
		return nil, errors.Wrapf(ErrIntegrity, "object %s hashes to %s", id, got)
	}
	obj, err := s.reg.Decode(enc)
	if err != nil {
		return nil, errors.Wrapf(err, "decoding object %s", id)
	}
	if got := obj.ID(); got != id {
		return nil, errors.Wrapf(ErrIntegrity, "object %s re-encodes as %s", id, got)
	}
	return obj, nil
}

// GetHex is like Get but takes the ID in hex form,
// in either case.
// Malformed hex is an ErrFormat error.
func (s *Store) GetHex(ctx context.Context, h string) (Object, error) {
	id, err := IDFromHex(strings.ToLower(h))
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Has tells whether an object with the given ID is stored.
// It does not decode or verify the object.
func (s *Store) Has(ctx context.Context, id ID) (bool, error) {
	_, err := s.b.Get(ctx, objKey(id))
	if stderrs.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrapf(err, "getting object %s", id)
	}
	return true, nil
}

var idsPattern = "^" + regexp.QuoteMeta(objsPrefix) + "[0-9a-f]{40}$"

// IDs lists the IDs of all objects in s, in order.
func (s *Store) IDs(ctx context.Context) ([]ID, error) {
	keys, err := s.b.Query(ctx, idsPattern)
	if err != nil {
		return nil, errors.Wrap(err, "listing objects")
	}
	ids := make([]ID, 0, len(keys))
	for _, k := range keys {
		id, err := IDFromHex(strings.TrimPrefix(k, objsPrefix))
		if err != nil {
			return nil, errors.Wrapf(err, "parsing key %s", k)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Equal tells whether two objects have the same canonical encoding.
func Equal(a, b Object) bool {
	return bytes.Equal(a.Encode(), b.Encode())
}
