package cas_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ooici/cas"
	"github.com/ooici/cas/store/mem"
)

func TestPutGet(t *testing.T) {
	var (
		ctx     = context.Background()
		backend = mem.New()
		s       = cas.New(backend, "ns")
		hello   = cas.NewBlob([]byte("hello"))
	)

	id, err := s.Put(ctx, hello)
	if err != nil {
		t.Fatal(err)
	}
	if id.String() != "b6fc4c620b67d95f953a5c1c1230aaab5db5a1b0" {
		t.Errorf("got id %s", id)
	}

	raw, err := backend.Get(ctx, "ns.objs."+id.String())
	if err != nil {
		t.Fatal(err)
	}
	if string(raw) != "blob 5\x00hello" {
		t.Errorf("stored %q", raw)
	}

	obj, err := s.Get(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if !cas.Equal(obj, hello) {
		t.Errorf("got %q, want %q", obj.Encode(), hello.Encode())
	}

	obj, err = s.GetHex(ctx, "B6FC4C620B67D95F953A5C1C1230AAAB5DB5A1B0")
	if err != nil {
		t.Fatal(err)
	}
	if obj.ID() != id {
		t.Errorf("GetHex got %s, want %s", obj.ID(), id)
	}

	if _, err := s.GetHex(ctx, "nothex"); !errors.Is(err, cas.ErrFormat) {
		t.Errorf("got error %v, want %v", err, cas.ErrFormat)
	}
}

func TestIdempotentPut(t *testing.T) {
	var (
		ctx     = context.Background()
		backend = mem.New()
		s       = cas.New(backend, "ns")
	)
	id1, err := s.Put(ctx, cas.NewBlob([]byte("same")))
	if err != nil {
		t.Fatal(err)
	}
	id2, err := s.Put(ctx, cas.NewBlob([]byte("same")))
	if err != nil {
		t.Fatal(err)
	}
	if id1 != id2 {
		t.Errorf("ids differ: %s vs. %s", id1, id2)
	}
	keys, err := backend.Query(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(keys) != 1 {
		t.Errorf("got %d keys, want 1", len(keys))
	}
}

func TestNotFound(t *testing.T) {
	var (
		ctx = context.Background()
		s   = cas.New(mem.New(), "ns")
		id  = cas.NewBlob([]byte("never stored")).ID()
	)
	if _, err := s.Get(ctx, id); !errors.Is(err, cas.ErrNotFound) {
		t.Errorf("got error %v, want %v", err, cas.ErrNotFound)
	}
	has, err := s.Has(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if has {
		t.Error("Has reports a missing object")
	}
}

func TestIntegrity(t *testing.T) {
	var (
		ctx     = context.Background()
		backend = mem.New()
		s       = cas.New(backend, "ns")
		blob    = cas.NewBlob([]byte("hello"))
	)
	tree, err := cas.NewTree(cas.TreeEntry{Name: "file.txt", Mode: cas.ModeFile, Object: blob})
	if err != nil {
		t.Fatal(err)
	}
	commit, err := cas.NewCommit(tree.ID(), []cas.ID{blob.ID()}, "first\n\nsecond", map[string]string{"author": "a b"})
	if err != nil {
		t.Fatal(err)
	}

	for _, obj := range []cas.Object{blob, tree, commit} {
		id, err := s.Put(ctx, obj)
		if err != nil {
			t.Fatal(err)
		}
		var (
			key  = "ns.objs." + id.String()
			orig = obj.Encode()
		)
		for i := range orig {
			for _, bit := range []byte{0x01, 0x80} {
				corrupt := append([]byte(nil), orig...)
				corrupt[i] ^= bit
				if err := backend.Put(ctx, key, corrupt); err != nil {
					t.Fatal(err)
				}
				got, err := s.Get(ctx, id)
				if !errors.Is(err, cas.ErrIntegrity) {
					t.Errorf("%s: flipping bit %#x of byte %d: got error %v, want %v", obj.Type(), bit, i, err, cas.ErrIntegrity)
				}
				if got != nil {
					t.Errorf("%s: flipping bit %#x of byte %d: got an object along with the error", obj.Type(), bit, i)
				}
			}
		}
		if err := backend.Put(ctx, key, orig); err != nil {
			t.Fatal(err)
		}
		if _, err := s.Get(ctx, id); err != nil {
			t.Errorf("%s: after restoring: %s", obj.Type(), err)
		}
	}

	// Bytes that decode as a different, valid object.
	key := "ns.objs." + blob.ID().String()
	if err := backend.Put(ctx, key, cas.NewBlob([]byte("other")).Encode()); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Get(ctx, blob.ID()); !errors.Is(err, cas.ErrIntegrity) {
		t.Errorf("got error %v, want %v", err, cas.ErrIntegrity)
	}

	// Garbage stored under some other id.
	if err := backend.Put(ctx, key, []byte("garbage")); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Get(ctx, blob.ID()); !errors.Is(err, cas.ErrIntegrity) {
		t.Errorf("got error %v, want %v", err, cas.ErrIntegrity)
	}
}

// Bytes stored under their own hash must still be the canonical encoding
// of the object they decode to.
func TestNonCanonical(t *testing.T) {
	treeHex := "952dd0a0ff0d34ef3f52035c658e1d1ed56fd0c1"
	cases := []struct {
		name string
		raw  string
		want error
	}{
		{name: "garbage", raw: "garbage", want: cas.ErrFormat},
		{name: "leading zero", raw: "blob 005\x00hello", want: cas.ErrFormat},
		{name: "uppercase tree", raw: string(cas.Envelope(cas.TypeCommit, []byte("tree "+strings.ToUpper(treeHex)+"\n\nlog"))), want: cas.ErrFormat},
		{name: "field before tree", raw: string(cas.Envelope(cas.TypeCommit, []byte("k v\ntree "+treeHex+"\n\nlog"))), want: cas.ErrIntegrity},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var (
				ctx     = context.Background()
				backend = mem.New()
				s       = cas.New(backend, "ns")
				id      = cas.SHA1([]byte(c.raw))
			)
			if err := backend.Put(ctx, "ns.objs."+id.String(), []byte(c.raw)); err != nil {
				t.Fatal(err)
			}
			obj, err := s.Get(ctx, id)
			if !errors.Is(err, c.want) {
				t.Errorf("got error %v, want %v", err, c.want)
			}
			if obj != nil {
				t.Errorf("got object %s along with the error", obj.ID())
			}
		})
	}
}

func TestNamespaceIsolation(t *testing.T) {
	var (
		ctx    = context.Background()
		shared = mem.New()
		a      = cas.New(shared, "a")
		b      = cas.New(shared, "b")
	)
	id, err := a.Put(ctx, cas.NewBlob([]byte("only in a")))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := b.Get(ctx, id); !errors.Is(err, cas.ErrNotFound) {
		t.Errorf("got error %v, want %v", err, cas.ErrNotFound)
	}
	ids, err := b.IDs(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 0 {
		t.Errorf("b lists %v", ids)
	}
	ids, err = a.IDs(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]cas.ID{id}, ids); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestTreeScenario(t *testing.T) {
	var (
		ctx   = context.Background()
		s     = cas.New(mem.New(), "ns")
		hello = cas.NewBlob([]byte("hello"))
	)
	tree, err := cas.NewTree(cas.TreeEntry{Name: "file.txt", Mode: cas.ModeFile, Object: hello})
	if err != nil {
		t.Fatal(err)
	}

	treeID, err := s.PutDeep(ctx, tree)
	if err != nil {
		t.Fatal(err)
	}
	has, err := s.Has(ctx, hello.ID())
	if err != nil {
		t.Fatal(err)
	}
	if !has {
		t.Error("PutDeep did not store the tree's child")
	}

	obj, err := s.Get(ctx, treeID)
	if err != nil {
		t.Fatal(err)
	}
	got, ok := obj.(*cas.Tree)
	if !ok {
		t.Fatalf("got %T, want *cas.Tree", obj)
	}
	e, ok := got.Lookup("file.txt")
	if !ok {
		t.Fatal("file.txt not found")
	}
	child, err := s.Get(ctx, e.ID)
	if err != nil {
		t.Fatal(err)
	}
	if string(child.(*cas.Blob).Content()) != "hello" {
		t.Errorf("got %q", child.(*cas.Blob).Content())
	}

	c, err := cas.NewCommit(treeID, nil, "first commit", nil)
	if err != nil {
		t.Fatal(err)
	}
	cid, err := s.Put(ctx, c)
	if err != nil {
		t.Fatal(err)
	}
	obj, err = s.Get(ctx, cid)
	if err != nil {
		t.Fatal(err)
	}
	gotc, ok := obj.(*cas.Commit)
	if !ok {
		t.Fatalf("got %T, want *cas.Commit", obj)
	}
	if gotc.Tree() != treeID || gotc.Log() != "first commit" || len(gotc.Parents()) != 0 {
		t.Errorf("got commit %q", gotc.Encode())
	}
}

func TestWithRegistry(t *testing.T) {
	var (
		ctx     = context.Background()
		backend = mem.New()
		reg     = cas.Registry{cas.TypeBlob: cas.DefaultRegistry()[cas.TypeBlob]}
		s       = cas.New(backend, "ns", cas.WithRegistry(reg))
	)
	tree, err := cas.NewTree()
	if err != nil {
		t.Fatal(err)
	}
	id, err := s.Put(ctx, tree)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Get(ctx, id); !errors.Is(err, cas.ErrUnknownType) {
		t.Errorf("got error %v, want %v", err, cas.ErrUnknownType)
	}
}
