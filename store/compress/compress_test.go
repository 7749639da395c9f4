package compress

import (
	"bytes"
	"context"
	"testing"

	"github.com/ooici/cas/store"
	"github.com/ooici/cas/store/mem"
	"github.com/ooici/cas/testutil"
)

func compressors(t *testing.T) map[string]Compressor {
	z, err := NewZstd(-1)
	if err != nil {
		t.Fatal(err)
	}
	return map[string]Compressor{
		"zstd":  z,
		"flate": Flate{Level: -1},
		"lzw":   LZW{},
	}
}

func TestStore(t *testing.T) {
	for name, c := range compressors(t) {
		c := c
		t.Run(name, func(t *testing.T) {
			testutil.Backend(context.Background(), t, New(mem.New(), c))
		})
	}
}

func TestHeader(t *testing.T) {
	ctx := context.Background()
	for name, c := range compressors(t) {
		t.Run(name, func(t *testing.T) {
			var (
				nested = mem.New()
				s      = New(nested, c)
				big    = bytes.Repeat([]byte("abcd"), 1024)
			)
			if err := s.Put(ctx, "big", big); err != nil {
				t.Fatal(err)
			}
			if err := s.Put(ctx, "tiny", []byte("x")); err != nil {
				t.Fatal(err)
			}

			got, err := nested.Get(ctx, "big")
			if err != nil {
				t.Fatal(err)
			}
			if got[0] != compressed || len(got) >= len(big) {
				t.Errorf("big value: header %d, %d bytes stored", got[0], len(got))
			}

			got, err = nested.Get(ctx, "tiny")
			if err != nil {
				t.Fatal(err)
			}
			if !bytes.Equal(got, []byte{raw, 'x'}) {
				t.Errorf("tiny value stored as %v", got)
			}
		})
	}
}

func TestBadHeader(t *testing.T) {
	var (
		ctx    = context.Background()
		nested = mem.New()
		s      = New(nested, Flate{})
	)
	if err := nested.Put(ctx, "k", []byte{7, 'x'}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Get(ctx, "k"); err == nil {
		t.Error("got no error for unknown header")
	}
}

func TestCreate(t *testing.T) {
	ctx := context.Background()
	for _, name := range []string{"", "zstd", "flate", "lzw"} {
		conf := map[string]interface{}{
			"nested": map[string]interface{}{"type": "mem"},
		}
		if name != "" {
			conf["compressor"] = name
		}
		if _, err := store.Create(ctx, "compress", conf); err != nil {
			t.Errorf("compressor %q: %s", name, err)
		}
	}
	_, err := store.Create(ctx, "compress", map[string]interface{}{
		"nested":     map[string]interface{}{"type": "mem"},
		"compressor": "bogus",
	})
	if err == nil {
		t.Error("got no error for unknown compressor")
	}
}
