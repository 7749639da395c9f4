package cas

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"

	"github.com/pkg/errors"
)

// ID is the identity of a stored object: the SHA-1 hash of its canonical encoding.
type ID [sha1.Size]byte

// Zero is the zero value of an ID.
var Zero ID

// String returns the 40-character lowercase hex form of id.
func (id ID) String() string {
	return hex.EncodeToString(id[:])
}

// Less tells whether id sorts before other.
func (id ID) Less(other ID) bool {
	return bytes.Compare(id[:], other[:]) < 0
}

// IsZero tells whether id is the zero ID.
func (id ID) IsZero() bool {
	return id == Zero
}

// FromHex parses s into id.
// Upper- and lowercase hex digits are both accepted.
func (id *ID) FromHex(s string) error {
	if len(s) != 2*sha1.Size {
		return errors.Wrapf(ErrFormat, "id %q has length %d, want %d", s, len(s), 2*sha1.Size)
	}
	_, err := hex.Decode(id[:], []byte(s))
	if err != nil {
		return errors.Wrapf(ErrFormat, "id %q: %s", s, err)
	}
	return nil
}

// IDFromHex parses a 40-character hex string into an ID.
func IDFromHex(s string) (ID, error) {
	var out ID
	err := out.FromHex(s)
	return out, err
}

// IDFromBytes converts a 20-byte raw digest into an ID.
func IDFromBytes(b []byte) (ID, error) {
	var out ID
	if len(b) != len(out) {
		return Zero, errors.Wrapf(ErrFormat, "raw id has length %d, want %d", len(b), len(out))
	}
	copy(out[:], b)
	return out, nil
}

// SHA1 computes the raw SHA-1 digest of b.
func SHA1(b []byte) ID {
	return sha1.Sum(b)
}

// SHA1Hex computes the SHA-1 digest of b in lowercase hex.
func SHA1Hex(b []byte) string {
	return SHA1(b).String()
}

// HexToBinary converts a 40-character hex digest to its 20 raw bytes.
func HexToBinary(s string) ([]byte, error) {
	id, err := IDFromHex(s)
	if err != nil {
		return nil, err
	}
	return id[:], nil
}

// BinaryToHex converts a 20-byte raw digest to 40 lowercase hex characters.
func BinaryToHex(b []byte) (string, error) {
	id, err := IDFromBytes(b)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
