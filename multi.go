package cas

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// GetFuture is the pending result of GetAsync.
// Calling it waits for the result or for ctx to be done.
type GetFuture func(context.Context) (Object, error)

// PutFuture is the pending result of PutAsync.
type PutFuture func(context.Context) (ID, error)

// GetAsync starts a Get in its own goroutine and returns a future for its result.
// The request runs under ctx,
// independently of the context later given to the future.
func (s *Store) GetAsync(ctx context.Context, id ID) GetFuture {
	type result struct {
		obj Object
		err error
	}
	ch := make(chan result, 1)
	go func() {
		obj, err := s.Get(ctx, id)
		ch <- result{obj: obj, err: err}
	}()

	var (
		r    result
		done bool
	)
	return func(wctx context.Context) (Object, error) {
		if !done {
			select {
			case <-wctx.Done():
				return nil, wctx.Err()
			case r = <-ch:
				done = true
			}
		}
		return r.obj, r.err
	}
}

// PutAsync starts a Put in its own goroutine and returns a future for its result.
// The ID is known before the write completes,
// but the future reports it only once the write has succeeded.
func (s *Store) PutAsync(ctx context.Context, obj Object) PutFuture {
	type result struct {
		id  ID
		err error
	}
	ch := make(chan result, 1)
	go func() {
		id, err := s.Put(ctx, obj)
		ch <- result{id: id, err: err}
	}()

	var (
		r    result
		done bool
	)
	return func(wctx context.Context) (ID, error) {
		if !done {
			select {
			case <-wctx.Done():
				return Zero, wctx.Err()
			case r = <-ch:
				done = true
			}
		}
		return r.id, r.err
	}
}

// GetMulti gets multiple objects with a single call,
// as a bunch of concurrent individual Get calls.
// The return value is a mapping of input IDs to the objects that were found.
// The returned error may be a MultiErr,
// mapping input IDs to errors encountered retrieving those specific IDs.
// This function may return a successful partial result even in case of error.
// In particular, when the error return is a MultiErr,
// every input ID appears in either the result map or the MultiErr map.
func (s *Store) GetMulti(ctx context.Context, ids []ID) (map[ID]Object, error) {
	futures := make([]GetFuture, len(ids))
	for i, id := range ids {
		futures[i] = s.GetAsync(ctx, id)
	}

	var (
		res    = make(map[ID]Object)
		errmap MultiErr
	)
	for i, f := range futures {
		obj, err := f(ctx)
		if err != nil {
			if errmap == nil {
				errmap = make(MultiErr)
			}
			errmap[ids[i]] = err
			continue
		}
		res[ids[i]] = obj
	}
	if errmap != nil {
		return res, errmap
	}
	return res, nil
}

// PutMulti stores multiple objects with a single call,
// as a bunch of concurrent individual Put calls.
// It returns the IDs of the objects in input order.
// The returned error may be a MultiErr,
// mapping the IDs of specific objects to errors encountered storing them.
func (s *Store) PutMulti(ctx context.Context, objs []Object) ([]ID, error) {
	futures := make([]PutFuture, len(objs))
	for i, obj := range objs {
		futures[i] = s.PutAsync(ctx, obj)
	}

	var (
		ids    = make([]ID, len(objs))
		errmap MultiErr
	)
	for i, f := range futures {
		id, err := f(ctx)
		if err != nil {
			id = objs[i].ID()
			if errmap == nil {
				errmap = make(MultiErr)
			}
			errmap[id] = err
		}
		ids[i] = id
	}
	if errmap != nil {
		return ids, errmap
	}
	return ids, nil
}

// MultiErr is a type of error returned by GetMulti and PutMulti.
// It maps individual IDs to errors encountered trying to Get or Put them.
type MultiErr map[ID]error

// Error implements the error interface.
func (e MultiErr) Error() string {
	var strs []string
	for id, err := range e {
		strs = append(strs, fmt.Sprintf("%s: %s", id, err))
	}
	sort.Strings(strs)
	return "error(s): " + strings.Join(strs, "; ")
}
