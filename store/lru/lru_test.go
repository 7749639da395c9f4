package lru

import (
	"context"
	"errors"
	"testing"

	"github.com/ooici/cas/store"
	"github.com/ooici/cas/store/mem"
	"github.com/ooici/cas/testutil"
)

func TestStore(t *testing.T) {
	s, err := New(mem.New(), 1000)
	if err != nil {
		t.Fatal(err)
	}
	testutil.Backend(context.Background(), t, s)
}

func TestCache(t *testing.T) {
	var (
		ctx    = context.Background()
		nested = mem.New()
	)
	s, err := New(nested, 2)
	if err != nil {
		t.Fatal(err)
	}

	if err := s.Put(ctx, "a", []byte("1")); err != nil {
		t.Fatal(err)
	}

	// Change the nested value behind the cache's back.
	if err := nested.Put(ctx, "a", []byte("2")); err != nil {
		t.Fatal(err)
	}
	got, err := s.Get(ctx, "a")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "1" {
		t.Errorf("got %q, want cached value %q", got, "1")
	}

	if err := s.Remove(ctx, "a"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Get(ctx, "a"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("after Remove got error %v, want %v", err, store.ErrNotFound)
	}
}

func TestCreate(t *testing.T) {
	conf := map[string]interface{}{
		"size":   float64(10),
		"nested": map[string]interface{}{"type": "mem"},
	}
	b, err := store.Create(context.Background(), "lru", conf)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := b.(*Store); !ok {
		t.Errorf("got %T, want *Store", b)
	}

	if _, err := store.Create(context.Background(), "lru", map[string]interface{}{"nested": map[string]interface{}{"type": "mem"}}); err == nil {
		t.Error("got no error for missing size")
	}
}
