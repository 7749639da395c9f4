// Package testutil holds tests shared by all backend implementations.
package testutil

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"regexp"
	"testing"
	"testing/quick"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/ooici/cas/store"
)

// Backend exercises a store.Backend implementation.
// Keys are confined to a random prefix,
// so b may be shared with other data.
func Backend(ctx context.Context, t *testing.T, b store.Backend) {
	prefix := randPrefix(t)

	t.Run("missing", func(t *testing.T) {
		_, err := b.Get(ctx, prefix+"missing")
		if !errors.Is(err, store.ErrNotFound) {
			t.Fatalf("got error %v, want %v", err, store.ErrNotFound)
		}
	})

	t.Run("readwrite", func(t *testing.T) {
		ReadWrite(ctx, t, b, prefix+"rw.")
	})

	t.Run("overwrite", func(t *testing.T) {
		key := prefix + "over"
		if err := b.Put(ctx, key, []byte("first")); err != nil {
			t.Fatal(err)
		}
		if err := b.Put(ctx, key, []byte("second")); err != nil {
			t.Fatal(err)
		}
		got, err := b.Get(ctx, key)
		if err != nil {
			t.Fatal(err)
		}
		if string(got) != "second" {
			t.Errorf("got %q, want %q", got, "second")
		}
	})

	t.Run("remove", func(t *testing.T) {
		key := prefix + "gone"
		if err := b.Put(ctx, key, []byte("x")); err != nil {
			t.Fatal(err)
		}
		if err := b.Remove(ctx, key); err != nil {
			t.Fatal(err)
		}
		_, err := b.Get(ctx, key)
		if !errors.Is(err, store.ErrNotFound) {
			t.Fatalf("after Remove got error %v, want %v", err, store.ErrNotFound)
		}
		if err := b.Remove(ctx, key); err != nil {
			t.Errorf("removing an absent key: %s", err)
		}
	})

	t.Run("query", func(t *testing.T) {
		Query(ctx, t, b, prefix+"q.")
	})
}

// ReadWrite stores values of various shapes under keys beginning with prefix
// and makes sure the same bytes come back.
func ReadWrite(ctx context.Context, t *testing.T, b store.Backend, prefix string) {
	cases := map[string][]byte{
		"empty":  {},
		"text":   []byte("hello"),
		"nul":    []byte("a\x00b\x00"),
		"binary": {0xff, 0x00, 0x80, 0x7f},
		"big":    bytes.Repeat([]byte("0123456789abcdef"), 4096),
	}
	for name, val := range cases {
		if err := b.Put(ctx, prefix+name, val); err != nil {
			t.Fatalf("storing %s: %s", name, err)
		}
	}
	for name, want := range cases {
		got, err := b.Get(ctx, prefix+name)
		if err != nil {
			t.Fatalf("getting %s: %s", name, err)
		}
		if !bytes.Equal(got, want) {
			t.Errorf("%s: got %d bytes, want %d", name, len(got), len(want))
		}
	}

	var n int
	f := func(val []byte) bool {
		n++
		key := prefix + "quick." + hex.EncodeToString([]byte{byte(n), byte(n >> 8)})
		if err := b.Put(ctx, key, val); err != nil {
			t.Logf("storing %s: %s", key, err)
			return false
		}
		got, err := b.Get(ctx, key)
		if err != nil {
			t.Logf("getting %s: %s", key, err)
			return false
		}
		return bytes.Equal(got, val)
	}
	if err := quick.Check(f, nil); err != nil {
		t.Error(err)
	}
}

// Query stores a few keys beginning with prefix
// and checks which ones various patterns select.
func Query(ctx context.Context, t *testing.T, b store.Backend, prefix string) {
	keys := []string{
		"a.objs.1",
		"a.objs.2",
		"a.other",
		"b.objs.1",
	}
	for _, k := range keys {
		if err := b.Put(ctx, prefix+k, []byte(k)); err != nil {
			t.Fatal(err)
		}
	}

	p := "^" + regexp.QuoteMeta(prefix)
	cases := []struct {
		pattern string
		want    []string
	}{
		{pattern: p + `a\.objs\.`, want: []string{"a.objs.1", "a.objs.2"}},
		{pattern: p + `.*\.objs\.1$`, want: []string{"a.objs.1", "b.objs.1"}},
		{pattern: p + `a\.`, want: []string{"a.objs.1", "a.objs.2", "a.other"}},
		{pattern: p + `c`},
		{pattern: p, want: keys},
	}
	for _, c := range cases {
		got, err := b.Query(ctx, c.pattern)
		if err != nil {
			t.Fatalf("querying %s: %s", c.pattern, err)
		}
		var want []string
		for _, k := range c.want {
			want = append(want, prefix+k)
		}
		if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
			t.Errorf("pattern %s: mismatch (-want +got):\n%s", c.pattern, diff)
		}
	}

	if _, err := b.Query(ctx, "("); err == nil {
		t.Error("got no error for a malformed pattern")
	}
}

func randPrefix(t *testing.T) string {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		t.Fatal(err)
	}
	return "t" + hex.EncodeToString(buf[:]) + "."
}
