package cas

import (
	"bytes"
	"strconv"

	"github.com/pkg/errors"
)

// Envelope wraps body in the canonical header: "<typ> <len(body)>\x00<body>".
func Envelope(typ string, body []byte) []byte {
	header := typ + " " + strconv.Itoa(len(body))
	out := make([]byte, 0, len(header)+1+len(body))
	out = append(out, header...)
	out = append(out, 0)
	return append(out, body...)
}

// DecodeFunc parses the body of one object kind.
type DecodeFunc func(body []byte) (Object, error)

// Registry maps type tags to the functions that decode their bodies.
type Registry map[string]DecodeFunc

// DefaultRegistry produces a new Registry containing the built-in kinds.
// Callers may add entries to the result without affecting other registries.
func DefaultRegistry() Registry {
	return Registry{
		TypeBlob:   func(body []byte) (Object, error) { return NewBlob(body), nil },
		TypeTree:   func(body []byte) (Object, error) { return treeBody(body) },
		TypeCommit: func(body []byte) (Object, error) { return commitBody(body) },
	}
}

// Decode parses a canonical encoding,
// dispatching on the type in its header.
func (r Registry) Decode(b []byte) (Object, error) {
	typ, body, err := splitEnvelope(b)
	if err != nil {
		return nil, err
	}
	f, ok := r[typ]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownType, "type %q", typ)
	}
	return f(body)
}

// Decode parses a canonical encoding of one of the built-in kinds.
func Decode(b []byte) (Object, error) {
	return DefaultRegistry().Decode(b)
}

// DecodeBlob parses the canonical encoding of a blob.
func DecodeBlob(b []byte) (*Blob, error) {
	body, err := decodeKnown(b, TypeBlob)
	if err != nil {
		return nil, err
	}
	return NewBlob(body), nil
}

// DecodeTree parses the canonical encoding of a tree.
func DecodeTree(b []byte) (*Tree, error) {
	body, err := decodeKnown(b, TypeTree)
	if err != nil {
		return nil, err
	}
	return treeBody(body)
}

// DecodeCommit parses the canonical encoding of a commit.
func DecodeCommit(b []byte) (*Commit, error) {
	body, err := decodeKnown(b, TypeCommit)
	if err != nil {
		return nil, err
	}
	return commitBody(body)
}

func decodeKnown(b []byte, want string) ([]byte, error) {
	typ, body, err := splitEnvelope(b)
	if err != nil {
		return nil, err
	}
	if typ != want {
		return nil, errors.Wrapf(ErrFormat, "got type %q, want %q", typ, want)
	}
	return body, nil
}

// splitEnvelope parses "<type> <length>\x00<body>".
// The declared length must be canonical decimal and match the body exactly.
func splitEnvelope(b []byte) (string, []byte, error) {
	nul := bytes.IndexByte(b, 0)
	if nul < 0 {
		return "", nil, errors.Wrap(ErrFormat, "no NUL after header")
	}
	header, body := b[:nul], b[nul+1:]

	sp := bytes.IndexByte(header, ' ')
	if sp < 0 {
		return "", nil, errors.Wrapf(ErrFormat, "header %q has no length", header)
	}
	typ, lenstr := string(header[:sp]), header[sp+1:]
	if len(lenstr) == 0 {
		return "", nil, errors.Wrapf(ErrFormat, "header %q has empty length", header)
	}
	if len(lenstr) > 1 && lenstr[0] == '0' {
		return "", nil, errors.Wrapf(ErrFormat, "header %q has a leading zero in its length", header)
	}
	for _, c := range lenstr {
		if c < '0' || c > '9' {
			return "", nil, errors.Wrapf(ErrFormat, "header %q has non-decimal length", header)
		}
	}
	n, err := strconv.Atoi(string(lenstr))
	if err != nil {
		return "", nil, errors.Wrapf(ErrFormat, "header %q: %s", header, err)
	}
	if n != len(body) {
		return "", nil, errors.Wrapf(ErrFormat, "declared length %d, actual %d", n, len(body))
	}
	return typ, body, nil
}
