package cas

import (
	"bytes"
	"strings"

	"github.com/pkg/errors"
)

// Common entry modes.
const (
	ModeFile       = "100644"
	ModeExecutable = "100755"
	ModeTree       = "40000"
)

// TreeEntry is one named, moded reference in a Tree.
type TreeEntry struct {
	Name string
	Mode string
	ID   ID

	// Object, if non-nil, is the live object the entry refers to.
	// Its ID is used in place of the ID field.
	Object Object
}

// Ref is the ID the entry refers to.
func (e TreeEntry) Ref() ID {
	if e.Object != nil {
		return e.Object.ID()
	}
	return e.ID
}

// Tree is an ordered sequence of entries.
// Entry order is the order given to NewTree (or found in the encoding),
// never sorted.
// Names need not be unique;
// when they repeat, Lookup finds the last entry with the name,
// but every entry is kept and encoded.
type Tree struct {
	entries []TreeEntry
	index   map[string]int // name -> position of the last entry with that name
	e       encoding
}

var _ Object = (*Tree)(nil)

// NewTree produces a Tree from the given entries, in order.
// It is an ErrInvalid error for a name to contain NUL
// or for a mode to contain NUL or a space,
// since the encoding could not represent those.
func NewTree(entries ...TreeEntry) (*Tree, error) {
	t := &Tree{
		entries: make([]TreeEntry, len(entries)),
		index:   make(map[string]int, len(entries)),
	}
	for i, e := range entries {
		if strings.IndexByte(e.Name, 0) >= 0 {
			return nil, errors.Wrapf(ErrInvalid, "tree entry %d: name %q contains NUL", i, e.Name)
		}
		if strings.ContainsAny(e.Mode, " \x00") {
			return nil, errors.Wrapf(ErrInvalid, "tree entry %d (%s): mode %q contains a space or NUL", i, e.Name, e.Mode)
		}
		t.entries[i] = e
		t.index[e.Name] = i
	}
	return t, nil
}

// Len is the number of entries in t.
func (t *Tree) Len() int { return len(t.entries) }

// Entry returns the ith entry of t, with its ID resolved.
func (t *Tree) Entry(i int) TreeEntry {
	e := t.entries[i]
	e.ID = e.Ref()
	return e
}

// Entries returns t's entries in order, with their IDs resolved.
func (t *Tree) Entries() []TreeEntry {
	out := make([]TreeEntry, len(t.entries))
	for i := range t.entries {
		out[i] = t.Entry(i)
	}
	return out
}

// Lookup finds the entry with the given name.
// If more than one entry has that name, the last one wins.
func (t *Tree) Lookup(name string) (TreeEntry, bool) {
	i, ok := t.index[name]
	if !ok {
		return TreeEntry{}, false
	}
	return t.Entry(i), true
}

// Type implements Object.
func (t *Tree) Type() string { return TypeTree }

// Encode implements Object.
func (t *Tree) Encode() []byte { return t.e.encode(TypeTree, t.body) }

// ID implements Object.
func (t *Tree) ID() ID { return t.e.ident(TypeTree, t.body) }

// Each entry is "<mode> <name>\x00" followed by the 20 raw bytes of its ID.
func (t *Tree) body() []byte {
	buf := new(bytes.Buffer)
	for _, e := range t.entries {
		buf.WriteString(e.Mode)
		buf.WriteByte(' ')
		buf.WriteString(e.Name)
		buf.WriteByte(0)
		id := e.Ref()
		buf.Write(id[:])
	}
	return buf.Bytes()
}

func treeBody(body []byte) (*Tree, error) {
	var entries []TreeEntry
	for len(body) > 0 {
		nul := bytes.IndexByte(body, 0)
		if nul < 0 {
			return nil, errors.Wrapf(ErrFormat, "tree entry %d has no NUL", len(entries))
		}
		header := body[:nul]
		sp := bytes.IndexByte(header, ' ')
		if sp < 0 {
			return nil, errors.Wrapf(ErrFormat, "tree entry %d header %q has no space", len(entries), header)
		}
		rest := body[nul+1:]
		if len(rest) < len(ID{}) {
			return nil, errors.Wrapf(ErrFormat, "corrupt tree: entry %d has %d id bytes, want %d", len(entries), len(rest), len(ID{}))
		}
		var id ID
		copy(id[:], rest)
		entries = append(entries, TreeEntry{
			Mode: string(header[:sp]),
			Name: string(header[sp+1:]),
			ID:   id,
		})
		body = rest[len(id):]
	}
	return NewTree(entries...)
}
