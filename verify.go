package cas

import (
	"context"
	stderrs "errors"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// VerifyConcurrency is the number of objects Verify fetches at once.
const VerifyConcurrency = 8

// Verify fetches every object in s and checks that it decodes
// and hashes to its ID.
// Objects that fail are reported in a MultiErr.
// Any other error,
// such as a backend failure,
// stops the verification and is returned as-is.
func (s *Store) Verify(ctx context.Context) error {
	ids, err := s.IDs(ctx)
	if err != nil {
		return err
	}

	var (
		mu     sync.Mutex
		errmap MultiErr
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(VerifyConcurrency)
	for _, id := range ids {
		id := id
		g.Go(func() error {
			_, err := s.Get(ctx, id)
			if err == nil {
				return nil
			}
			if !isObjectErr(err) {
				return errors.Wrapf(err, "verifying %s", id)
			}
			mu.Lock()
			defer mu.Unlock()
			if errmap == nil {
				errmap = make(MultiErr)
			}
			errmap[id] = err
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if errmap != nil {
		return errmap
	}
	return nil
}

func isObjectErr(err error) bool {
	for _, target := range []error{ErrFormat, ErrUnknownType, ErrIntegrity, ErrNotFound} {
		if stderrs.Is(err, target) {
			return true
		}
	}
	return false
}
