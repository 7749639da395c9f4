package mem

import (
	"context"
	"testing"

	"github.com/ooici/cas/testutil"
)

func TestStore(t *testing.T) {
	testutil.Backend(context.Background(), t, New())
}

func TestValuesAreCopied(t *testing.T) {
	var (
		ctx = context.Background()
		s   = New()
		val = []byte("abc")
	)
	if err := s.Put(ctx, "k", val); err != nil {
		t.Fatal(err)
	}
	val[0] = 'x'
	got, err := s.Get(ctx, "k")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "abc" {
		t.Errorf("stored value changed with caller's slice: got %q", got)
	}
	got[1] = 'y'
	got2, err := s.Get(ctx, "k")
	if err != nil {
		t.Fatal(err)
	}
	if string(got2) != "abc" {
		t.Errorf("stored value changed with returned slice: got %q", got2)
	}
}
