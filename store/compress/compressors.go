package compress

import (
	"bytes"
	"compress/lzw"
	"io"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"
)

// Zstd is a Compressor implementing Zstandard compression.
type Zstd struct {
	enc *zstd.Encoder
	dec *zstd.Decoder
}

// NewZstd produces a Zstd compressor.
// A level between 1 and 22 selects the nearest zstd encoder level;
// any other value selects the default.
func NewZstd(level int) (*Zstd, error) {
	var opts []zstd.EOption
	if level >= 1 && level <= 22 {
		opts = append(opts, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)))
	}
	enc, err := zstd.NewWriter(nil, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "creating zstd encoder")
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		return nil, errors.Wrap(err, "creating zstd decoder")
	}
	return &Zstd{enc: enc, dec: dec}, nil
}

// Compress implements Compressor.Compress.
func (z *Zstd) Compress(inp []byte) ([]byte, error) {
	return z.enc.EncodeAll(inp, nil), nil
}

// Uncompress implements Compressor.Uncompress.
func (z *Zstd) Uncompress(inp []byte) ([]byte, error) {
	return z.dec.DecodeAll(inp, nil)
}

// Flate is a Compressor implementing RFC1951 DEFLATE compression.
type Flate struct {
	Level int
}

// Compress implements Compressor.Compress.
func (f Flate) Compress(inp []byte) ([]byte, error) {
	buf := new(bytes.Buffer)
	level := f.Level
	if level < flate.HuffmanOnly || level > flate.BestCompression {
		level = flate.DefaultCompression
	}
	w, err := flate.NewWriter(buf, level)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(inp); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Uncompress implements Compressor.Uncompress.
func (f Flate) Uncompress(inp []byte) ([]byte, error) {
	rr := flate.NewReader(bytes.NewReader(inp))
	defer rr.Close()
	return io.ReadAll(rr)
}

// LZW is a Compressor implementing lzw compression.
type LZW struct {
	Order lzw.Order
}

// Compress implements Compressor.Compress.
func (l LZW) Compress(inp []byte) ([]byte, error) {
	buf := new(bytes.Buffer)
	w := lzw.NewWriter(buf, l.Order, 8)
	if _, err := w.Write(inp); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Uncompress implements Compressor.Uncompress.
func (l LZW) Uncompress(inp []byte) ([]byte, error) {
	rr := lzw.NewReader(bytes.NewReader(inp), l.Order, 8)
	defer rr.Close()
	return io.ReadAll(rr)
}
