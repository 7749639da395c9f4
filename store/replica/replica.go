// Package replica implements a backend that fans out to two sets of nested backends.
package replica

import (
	"context"
	stderrs "errors"
	"reflect"
	"sort"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/ooici/cas/store"
)

var _ store.Backend = (*Store)(nil)

// Store is a backend that delegates reads and writes to two sets of nested backends.
// One set is synchronous:
// writes to all of these must succeed before a call to Put or Remove returns,
// and an error from any will cause the call to fail.
// The other set is asynchronous:
// a call to Put or Remove queues the operation on these backends but does not wait for it to finish.
// However, if any asynchronous operation encounters an error,
// the whole Store is put into an error state and further operations will fail.
// Reads consult only the synchronous set.
type Store struct {
	sync   []store.Backend
	async  []asyncChans
	cancel context.CancelFunc

	mu  sync.Mutex // protects err
	err error      // the error from an async goroutine, if any
}

type request struct {
	key    string
	value  []byte
	remove bool
}

type asyncChans struct {
	reqs chan<- request
	errs <-chan error
}

// New produces a new Store.
// The set of synchronous backends must be non-empty.
// The set of asynchronous backends may be empty.
// If there are any asynchronous backends,
// goroutines are launched for them,
// and canceling the given context object causes those to exit,
// placing the Store in an error state.
//
// Normally, operations on asynchronous backends do not block the caller,
// but the queue for each nested backend has a fixed length given by n,
// which must be 1 or greater.
// If any async backend falls too far behind,
// Put and Remove block until all requests can be queued.
func New(ctx context.Context, sync []store.Backend, async []store.Backend, n int) *Store {
	result := &Store{sync: sync}

	if len(async) > 0 {
		ctx, result.cancel = context.WithCancel(ctx)

		selectCases := make([]reflect.SelectCase, 1+len(async))

		for i, a := range async {
			var (
				reqs = make(chan request, n)
				errs = make(chan error, 1)
			)

			result.async = append(result.async, asyncChans{reqs: reqs, errs: errs})

			selectCases[i].Dir = reflect.SelectRecv
			selectCases[i].Chan = reflect.ValueOf(errs)

			go runAsync(ctx, a, reqs, errs)
		}

		selectCases[len(async)].Dir = reflect.SelectRecv
		selectCases[len(async)].Chan = reflect.ValueOf(ctx.Done())

		go func() {
			_, errval, ok := reflect.Select(selectCases)
			if ok {
				result.cancel()
				result.mu.Lock()
				result.err = errval.Interface().(error)
				result.mu.Unlock()
			}
		}()
	}

	return result
}

// Runs as a goroutine until ctx is canceled or an error occurs (which it writes to errs).
func runAsync(ctx context.Context, b store.Backend, reqs <-chan request, errs chan<- error) {
	defer close(errs)

	for {
		select {
		case <-ctx.Done():
			errs <- ctx.Err()
			return

		case req := <-reqs:
			var err error
			if req.remove {
				err = b.Remove(ctx, req.key)
			} else {
				err = b.Put(ctx, req.key, req.value)
			}
			if err != nil {
				errs <- err
				return
			}
		}
	}
}

// Put stores the value in all synchronous nested backends.
// An error from any of them causes Put to return an error.
//
// A request to write the value is queued for any asynchronous nested backends.
// Normally this does not block the call to Put,
// but if any async backend falls too far behind,
// Put must wait for space to open in its request queue before proceeding.
// The size of this queue is given by the int passed to New.
func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	return s.each(ctx, request{key: key, value: value}, func(ctx context.Context, b store.Backend) error {
		return b.Put(ctx, key, value)
	})
}

// Remove deletes the value under key from all nested backends,
// synchronously or asynchronously as with Put.
func (s *Store) Remove(ctx context.Context, key string) error {
	return s.each(ctx, request{key: key, remove: true}, func(ctx context.Context, b store.Backend) error {
		return b.Remove(ctx, key)
	})
}

func (s *Store) each(ctx context.Context, req request, f func(context.Context, store.Backend) error) error {
	if err := s.checkErr(); err != nil {
		return errors.Wrap(err, "in async-store goroutine")
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, b := range s.sync {
		b := b
		g.Go(func() error {
			return f(gctx, b)
		})
	}

	for _, a := range s.async {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case a.reqs <- req:
		}
	}

	if err := g.Wait(); err != nil {
		if s.cancel != nil {
			s.cancel()
		}
		return err
	}
	return nil
}

// Get delegates the request to all of the synchronous backends in s,
// returning the result from the first one to respond without error
// and canceling the request to the others.
// If all synchronous backends respond with an error,
// one of those errors is returned,
// preferring one that is not store.ErrNotFound.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if err := s.checkErr(); err != nil {
		return nil, errors.Wrap(err, "in async-store goroutine")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type result struct {
		val []byte
		err error
	}

	ch := make(chan result, len(s.sync))
	for _, b := range s.sync {
		b := b
		go func() {
			val, err := b.Get(ctx, key)
			ch <- result{val: val, err: err}
		}()
	}

	err := store.ErrNotFound
	for range s.sync {
		r := <-ch
		if r.err == nil {
			return r.val, nil
		}
		if !stderrs.Is(r.err, store.ErrNotFound) {
			err = r.err
		}
	}
	return nil, err
}

// Query delegates the request to all of the synchronous backends in s
// and synthesizes the result from the union of their keys.
func (s *Store) Query(ctx context.Context, pattern string) ([]string, error) {
	if err := s.checkErr(); err != nil {
		return nil, errors.Wrap(err, "in async-store goroutine")
	}

	results := make([][]string, len(s.sync))

	g, ctx := errgroup.WithContext(ctx)
	for i, b := range s.sync {
		i, b := i, b
		g.Go(func() error {
			keys, err := b.Query(ctx, pattern)
			results[i] = keys
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	var keys []string
	for _, r := range results {
		for _, k := range r {
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *Store) checkErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func init() {
	store.Register("replica", func(ctx context.Context, conf map[string]interface{}) (store.Backend, error) {
		syncStores, err := store.ConfNestedList(ctx, conf, "sync")
		if err != nil {
			return nil, errors.Wrap(err, "creating nested sync stores")
		}
		if len(syncStores) == 0 {
			return nil, errors.New(`missing "sync" parameter`)
		}
		asyncStores, err := store.ConfNestedList(ctx, conf, "async")
		if err != nil {
			return nil, errors.Wrap(err, "creating nested async stores")
		}
		queueLen, err := store.ConfInt(conf, "queue", 10)
		if err != nil {
			return nil, err
		}
		if queueLen < 1 {
			queueLen = 1
		}
		return New(ctx, syncStores, asyncStores, queueLen), nil
	})
}
