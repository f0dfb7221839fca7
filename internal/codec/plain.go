package codec

import (
	"io"
)

// Compile-time check that Plain implements Codec.
var _ Codec = (*Plain)(nil)

// Plain passes data through unchanged.
type Plain struct{}

// NewPlain returns a new pass-through codec.
func NewPlain() *Plain {
	return &Plain{}
}

// Reader returns r with a no-op Close; the caller still owns r.
func (c *Plain) Reader(r io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(r), nil
}

// Writer returns w with a no-op Close; the caller still owns w.
func (c *Plain) Writer(w io.Writer) (io.WriteCloser, error) {
	return nopWriteCloser{w}, nil
}

// Extension returns empty string.
func (c *Plain) Extension() string {
	return ""
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
