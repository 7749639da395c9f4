package store_test

import (
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	. "github.com/ooici/cas/store"
	"github.com/ooici/cas/store/mem"
)

func TestSync(t *testing.T) {
	const text = `abc def ghi jkl mno pqr stu`

	var (
		ctx      = context.Background()
		words    = strings.Fields(text)
		backends = make([]Backend, 0, len(words))
	)
	for i := range words {
		s := mem.New()
		backends = append(backends, s)
		for j, word := range words {
			if i == j {
				continue
			}
			if err := s.Put(ctx, "w."+word, []byte(word)); err != nil {
				t.Fatal(err)
			}
		}
		if err := s.Put(ctx, "other."+words[i], nil); err != nil {
			t.Fatal(err)
		}
	}

	n, err := Sync(ctx, `^w\.`, backends)
	if err != nil {
		t.Fatal(err)
	}
	if n != len(words) {
		t.Errorf("copied %d values, want %d", n, len(words))
	}

	keys, err := backends[0].Query(ctx, `^w\.`)
	if err != nil {
		t.Fatal(err)
	}
	if len(keys) != len(words) {
		t.Errorf("got %d keys after sync, want %d", len(keys), len(words))
	}

	for i := 1; i < len(backends); i++ {
		keys2, err := backends[i].Query(ctx, `^w\.`)
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(keys, keys2); diff != "" {
			t.Errorf("mismatch (-want +got):\n%s", diff)
		}
		others, err := backends[i].Query(ctx, `^other\.`)
		if err != nil {
			t.Fatal(err)
		}
		if len(others) != 1 {
			t.Errorf("backend %d: keys outside the pattern were synced: %v", i, others)
		}
	}

	got, err := backends[0].Get(ctx, "w.abc")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "abc" {
		t.Errorf("got %q, want %q", got, "abc")
	}
}
