package cas

import "sync"

// Type tags of the built-in object kinds.
// Each appears in the envelope header and keys the Registry.
const (
	TypeBlob   = "blob"
	TypeTree   = "tree"
	TypeCommit = "commit"
)

// Object is an immutable stored object.
// The built-in kinds are *Blob, *Tree, and *Commit.
// Other kinds may implement Object and be added to a Registry.
type Object interface {
	// Type is the object's type tag.
	Type() string

	// Encode produces the object's canonical encoding:
	// "<type> <body length>\x00<body>".
	Encode() []byte

	// ID is the SHA-1 hash of Encode's output.
	ID() ID
}

// encoding memoizes an object's canonical bytes and their hash.
// It is filled in once, on first use, and never changes after that.
type encoding struct {
	once sync.Once
	enc  []byte
	id   ID
}

func (e *encoding) get(typ string, body func() []byte) ([]byte, ID) {
	e.once.Do(func() {
		e.enc = Envelope(typ, body())
		e.id = SHA1(e.enc)
	})
	return e.enc, e.id
}

func (e *encoding) encode(typ string, body func() []byte) []byte {
	enc, _ := e.get(typ, body)
	out := make([]byte, len(enc))
	copy(out, enc)
	return out
}

func (e *encoding) ident(typ string, body func() []byte) ID {
	_, id := e.get(typ, body)
	return id
}
