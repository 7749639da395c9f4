package store

import (
	"context"
	"sort"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// Sync synchronizes two or more backends.
// It runs Query with pattern on all of them.
// When a key is found in some but not all backends,
// its value is copied from the first backend having it
// to the ones where it's missing.
// It returns the number of values copied.
//
// Keys present everywhere are not compared.
// For content-addressed keys that is enough,
// since equal keys imply equal values.
func Sync(ctx context.Context, pattern string, backends []Backend) (int, error) {
	if len(backends) < 2 {
		return 0, nil
	}

	var (
		keysets = make([]map[string]struct{}, len(backends))
		g, gctx = errgroup.WithContext(ctx)
	)
	for i, b := range backends {
		i, b := i, b
		g.Go(func() error {
			keys, err := b.Query(gctx, pattern)
			if err != nil {
				return errors.Wrapf(err, "querying backend %d", i)
			}
			set := make(map[string]struct{}, len(keys))
			for _, k := range keys {
				set[k] = struct{}{}
			}
			keysets[i] = set
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	union := make(map[string]struct{})
	for _, set := range keysets {
		for k := range set {
			union[k] = struct{}{}
		}
	}
	keys := make([]string, 0, len(union))
	for k := range union {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var copied int
	for _, k := range keys {
		var (
			haver   = -1
			needers []int
		)
		for i, set := range keysets {
			if _, ok := set[k]; ok {
				if haver < 0 {
					haver = i
				}
			} else {
				needers = append(needers, i)
			}
		}
		if len(needers) == 0 {
			continue
		}

		val, err := backends[haver].Get(ctx, k)
		if err != nil {
			return copied, errors.Wrapf(err, "getting %s", k)
		}
		for _, i := range needers {
			if err := backends[i].Put(ctx, k, val); err != nil {
				return copied, errors.Wrapf(err, "storing %s in backend %d", k, i)
			}
			copied++
		}
	}
	return copied, nil
}
