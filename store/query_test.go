package store

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLiteralPrefix(t *testing.T) {
	cases := []struct {
		pattern, want string
	}{
		{pattern: "", want: ""},
		{pattern: "abc", want: ""},
		{pattern: "^abc", want: "abc"},
		{pattern: `^ns\.objs\.[0-9a-f]{40}$`, want: "ns.objs."},
		{pattern: `^abc*`, want: "ab"},
		{pattern: `^ab(c)`, want: "ab"},
		{pattern: `^a|^b`, want: ""},
		{pattern: `^a\d`, want: "a"},
		{pattern: `^x\.?y`, want: "x"},
		{pattern: `^ns(?:\.objs\.)`, want: "ns"},
		{pattern: `^héllo$`, want: "héllo"},
	}
	for _, c := range cases {
		if got := literalPrefix(c.pattern); got != c.want {
			t.Errorf("literalPrefix(%q) = %q, want %q", c.pattern, got, c.want)
		}
	}
}

func TestMatcher(t *testing.T) {
	m, err := Compile(`\.objs\.`)
	if err != nil {
		t.Fatal(err)
	}
	if m.Prefix != "" {
		t.Errorf("unanchored pattern got prefix %q", m.Prefix)
	}
	got := m.Filter([]string{"z.objs.1", "a.objs.2", "a.other", ".objs."})
	want := []string{".objs.", "a.objs.2", "z.objs.1"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}

	if _, err := Compile("a["); err == nil {
		t.Error("got no error for malformed pattern")
	}
}

func TestConfInt(t *testing.T) {
	conf := map[string]interface{}{
		"int":   7,
		"float": float64(8),
		"frac":  8.5,
		"str":   "9",
	}
	cases := []struct {
		key     string
		want    int
		wantErr bool
	}{
		{key: "int", want: 7},
		{key: "float", want: 8},
		{key: "frac", wantErr: true},
		{key: "str", wantErr: true},
		{key: "absent", want: 42},
	}
	for _, c := range cases {
		got, err := ConfInt(conf, c.key, 42)
		if c.wantErr {
			if err == nil {
				t.Errorf("%s: got no error", c.key)
			}
			continue
		}
		if err != nil {
			t.Errorf("%s: %s", c.key, err)
			continue
		}
		if got != c.want {
			t.Errorf("%s: got %d, want %d", c.key, got, c.want)
		}
	}
}
