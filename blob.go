package cas

// Blob is an opaque sequence of bytes.
// Its body encoding is the bytes themselves.
type Blob struct {
	content []byte
	e       encoding
}

var _ Object = (*Blob)(nil)

// NewBlob produces a Blob holding a copy of content.
func NewBlob(content []byte) *Blob {
	c := make([]byte, len(content))
	copy(c, content)
	return &Blob{content: c}
}

// Content returns a copy of the blob's bytes.
func (b *Blob) Content() []byte {
	out := make([]byte, len(b.content))
	copy(out, b.content)
	return out
}

// Len is the number of bytes in the blob.
func (b *Blob) Len() int { return len(b.content) }

// Type implements Object.
func (b *Blob) Type() string { return TypeBlob }

// Encode implements Object.
func (b *Blob) Encode() []byte { return b.e.encode(TypeBlob, b.body) }

// ID implements Object.
func (b *Blob) ID() ID { return b.e.ident(TypeBlob, b.body) }

func (b *Blob) body() []byte { return b.content }
