package cas

import (
	"errors"
	"strings"
	"testing"
	"testing/quick"
)

func TestSHA1Hex(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{in: "blob 5\x00hello", want: "b6fc4c620b67d95f953a5c1c1230aaab5db5a1b0"},
		{in: "blob 0\x00", want: "e69de29bb2d1d6434b8b29ae775ad8c2e48c5391"},
		{in: "tree 0\x00", want: "4b825dc642cb6eb9a060e54bf8d69288fbee4904"},
	}
	for _, c := range cases {
		if got := SHA1Hex([]byte(c.in)); got != c.want {
			t.Errorf("SHA1Hex(%q) = %s, want %s", c.in, got, c.want)
		}
	}
}

func TestHexRoundTrip(t *testing.T) {
	f := func(id ID) bool {
		h, err := BinaryToHex(id[:])
		if err != nil {
			return false
		}
		if len(h) != 40 || strings.ToLower(h) != h {
			return false
		}
		b, err := HexToBinary(h)
		if err != nil {
			return false
		}
		return string(b) == string(id[:])
	}
	if err := quick.Check(f, nil); err != nil {
		t.Error(err)
	}
}

func TestFromHex(t *testing.T) {
	const good = "b6fc4c620b67d95f953a5c1c1230aaab5db5a1b0"

	id, err := IDFromHex(strings.ToUpper(good))
	if err != nil {
		t.Fatal(err)
	}
	if id.String() != good {
		t.Errorf("got %s, want %s", id, good)
	}

	for _, bad := range []string{"", "abc", good[:39], good + "0", "zz" + good[2:]} {
		if _, err := IDFromHex(bad); !errors.Is(err, ErrFormat) {
			t.Errorf("IDFromHex(%q): got error %v, want %v", bad, err, ErrFormat)
		}
	}

	if _, err := BinaryToHex(make([]byte, 19)); !errors.Is(err, ErrFormat) {
		t.Errorf("BinaryToHex of 19 bytes: got error %v, want %v", err, ErrFormat)
	}
}

func TestLess(t *testing.T) {
	a, _ := IDFromHex("0000000000000000000000000000000000000001")
	b, _ := IDFromHex("0000000000000000000000000000000000000002")
	if !a.Less(b) || b.Less(a) || a.Less(a) {
		t.Error("Less is not a strict order")
	}
	if !Zero.IsZero() || a.IsZero() {
		t.Error("IsZero is wrong")
	}
}
