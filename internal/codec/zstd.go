package codec

import (
	"io"

	"github.com/klauspost/compress/zstd"
)

// Compile-time check that Zstd implements Codec.
var _ Codec = (*Zstd)(nil)

// Zstd implements zstd compression.
type Zstd struct {
	level zstd.EncoderLevel
}

// NewZstd returns a zstd codec using the default encoder level.
func NewZstd() *Zstd {
	return &Zstd{level: zstd.SpeedDefault}
}

// NewZstdLevel returns a zstd codec using the given encoder level.
func NewZstdLevel(level zstd.EncoderLevel) *Zstd {
	return &Zstd{level: level}
}

// Reader wraps r to decompress zstd data.
func (c *Zstd) Reader(r io.Reader) (io.ReadCloser, error) {
	decoder, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	return decoder.IOReadCloser(), nil
}

// Writer wraps w to compress data with zstd.
func (c *Zstd) Writer(w io.Writer) (io.WriteCloser, error) {
	return zstd.NewWriter(w, zstd.WithEncoderLevel(c.level))
}

// Extension returns "zst".
func (c *Zstd) Extension() string {
	return "zst"
}
