// Package codec provides compression and decompression for input and output
// files, selected by file extension.
package codec

import (
	"io"
	"path"
	"strings"
)

// Codec provides compression and decompression functionality.
type Codec interface {
	// Reader wraps r to decompress data read from it.
	Reader(r io.Reader) (io.ReadCloser, error)
	// Writer wraps w to compress data written to it.
	// Closing the returned writer does not close w.
	Writer(w io.Writer) (io.WriteCloser, error)
	// Extension returns the file extension without dot (e.g., "zst", "gz").
	// Returns empty string for no compression.
	Extension() string
}

// ForPath returns the codec matching the extension of name.
// Names without a known compression extension get the plain codec.
// Works for local paths, object keys and URLs alike.
func ForPath(name string) Codec {
	if i := strings.IndexAny(name, "?#"); i >= 0 && strings.Contains(name, "://") {
		name = name[:i]
	}
	switch strings.ToLower(path.Ext(name)) {
	case ".zst", ".zstd":
		return NewZstd()
	case ".gz", ".gzip":
		return NewGzip()
	default:
		return NewPlain()
	}
}
