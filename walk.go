package cas

import (
	"context"

	"github.com/pkg/errors"
)

// Refs lists the IDs that obj refers to:
// a commit's tree and then its parents,
// or a tree's entries in order.
// Blobs, and kinds Refs does not know, refer to nothing.
func Refs(obj Object) []ID {
	switch obj := obj.(type) {
	case *Commit:
		return append([]ID{obj.Tree()}, obj.Parents()...)
	case *Tree:
		out := make([]ID, 0, obj.Len())
		for i := 0; i < obj.Len(); i++ {
			out = append(out, obj.Entry(i).ID)
		}
		return out
	}
	return nil
}

// Walk calls fn once for each object reachable from roots,
// depth first,
// following the edges reported by Refs.
// Each object is visited once even if it is reachable by more than one path.
// A missing object stops the walk with an ErrNotFound error,
// and an error from fn stops it with that error.
func (s *Store) Walk(ctx context.Context, roots []ID, fn func(ID, Object) error) error {
	var (
		seen  = make(map[ID]struct{})
		stack = make([]ID, 0, len(roots))
	)
	for i := len(roots) - 1; i >= 0; i-- {
		stack = append(stack, roots[i])
	}

	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}

		obj, err := s.Get(ctx, id)
		if err != nil {
			return err
		}
		if err := fn(id, obj); err != nil {
			return err
		}

		refs := Refs(obj)
		for i := len(refs) - 1; i >= 0; i-- {
			if _, ok := seen[refs[i]]; !ok {
				stack = append(stack, refs[i])
			}
		}
	}
	return nil
}

// Log calls fn for head and each of its ancestor commits,
// breadth first,
// visiting a commit's parents in the order they are listed.
// Each commit is visited once.
// It is an error for head or any ancestor not to be a commit.
func (s *Store) Log(ctx context.Context, head ID, fn func(ID, *Commit) error) error {
	var (
		seen  = map[ID]struct{}{head: {}}
		queue = []ID{head}
	)
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]

		obj, err := s.Get(ctx, id)
		if err != nil {
			return err
		}
		c, ok := obj.(*Commit)
		if !ok {
			return errors.Wrapf(ErrInvalid, "object %s is a %s, not a commit", id, obj.Type())
		}
		if err := fn(id, c); err != nil {
			return err
		}
		for _, p := range c.parents {
			if _, ok := seen[p]; ok {
				continue
			}
			seen[p] = struct{}{}
			queue = append(queue, p)
		}
	}
	return nil
}
