// Package namespace implements a backend that confines its keys
// to one namespace of a shared backend.
package namespace

import (
	"context"
	"regexp"
	"strings"

	"github.com/pkg/errors"

	"github.com/ooici/cas/store"
)

var _ store.Backend = &Store{}

// Store prefixes every key with a fixed namespace before delegating to a shared backend,
// and strips the prefix from keys it returns.
// Stores with different namespaces over the same backend never see each other's keys,
// provided neither namespace is a prefix of the other.
// (cas.Store keys are "<ns>.objs.<hex>",
// so its namespaces need only differ.)
type Store struct {
	s  store.Backend
	ns string
}

// New produces a new Store for namespace ns over s.
func New(s store.Backend, ns string) *Store {
	return &Store{s: s, ns: ns}
}

// Namespace is the key prefix of s.
func (s *Store) Namespace() string { return s.ns }

// Get implements store.Backend.Get.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	return s.s.Get(ctx, s.ns+key)
}

// Put implements store.Backend.Put.
func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	return s.s.Put(ctx, s.ns+key, value)
}

// Remove implements store.Backend.Remove.
func (s *Store) Remove(ctx context.Context, key string) error {
	return s.s.Remove(ctx, s.ns+key)
}

// Query implements store.Backend.Query.
// The pattern is matched against keys with the namespace removed,
// anchored at the start of those keys.
// It must compile on its own,
// so that it cannot close the group it is wrapped in.
func (s *Store) Query(ctx context.Context, pattern string) ([]string, error) {
	if _, err := regexp.Compile(pattern); err != nil {
		return nil, errors.Wrapf(err, "compiling query pattern %q", pattern)
	}
	pattern = "^" + regexp.QuoteMeta(s.ns) + "(?:" + strings.TrimPrefix(pattern, "^") + ")"
	keys, err := s.s.Query(ctx, pattern)
	if err != nil {
		return nil, errors.Wrapf(err, "querying namespace %s", s.ns)
	}
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if !strings.HasPrefix(k, s.ns) {
			continue
		}
		out = append(out, strings.TrimPrefix(k, s.ns))
	}
	return out, nil
}

func init() {
	store.Register("namespace", func(ctx context.Context, conf map[string]interface{}) (store.Backend, error) {
		ns, err := store.ConfString(conf, "namespace")
		if err != nil {
			return nil, err
		}
		nested, err := store.ConfNested(ctx, conf, "nested")
		if err != nil {
			return nil, err
		}
		return New(nested, ns), nil
	})
}
