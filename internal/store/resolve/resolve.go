// Package resolve maps user-supplied location strings to a storage backend
// and an object name within it.
package resolve

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/discochess/marlinflow/internal/store"
	"github.com/discochess/marlinflow/internal/store/diskstore"
	"github.com/discochess/marlinflow/internal/store/gcsstore"
	"github.com/discochess/marlinflow/internal/store/httpstore"
	"github.com/discochess/marlinflow/internal/store/s3store"
)

// Mode says what the resolved object will be used for.
type Mode int

const (
	// Read resolves an object that will be opened.
	Read Mode = iota

	// Write resolves an object that will be created. Local parent
	// directories are created; read-only schemes are rejected.
	Write
)

// Options tune the remote backends.
type Options struct {
	// S3Region overrides the region from the AWS default chain.
	S3Region string

	// S3Endpoint points the S3 client at a compatible service such as MinIO.
	S3Endpoint string
}

// Target is a resolved location.
type Target struct {
	Store    store.Store
	Name     string
	Location store.Location
}

// Close releases the backend.
func (t *Target) Close() error {
	return t.Store.Close()
}

// Resolve parses location and opens the matching backend.
func Resolve(ctx context.Context, location string, mode Mode, opts Options) (*Target, error) {
	loc, err := store.ParseLocation(location)
	if err != nil {
		return nil, err
	}

	var (
		s    store.Store
		name = loc.Key
	)
	switch loc.Scheme {
	case store.SchemeFile:
		dir := filepath.Dir(loc.Key)
		if mode == Write {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("creating %s: %w", dir, err)
			}
		}
		s, err = diskstore.New(dir)
		name = filepath.Base(loc.Key)
	case store.SchemeGCS:
		var prefix string
		prefix, name = splitKey(loc.Key)
		s, err = gcsstore.New(ctx, loc.Bucket, gcsstore.WithPrefix(prefix))
	case store.SchemeS3:
		var prefix string
		prefix, name = splitKey(loc.Key)
		s3opts := []s3store.Option{s3store.WithPrefix(prefix)}
		if opts.S3Region != "" {
			s3opts = append(s3opts, s3store.WithRegion(opts.S3Region))
		}
		if opts.S3Endpoint != "" {
			s3opts = append(s3opts, s3store.WithEndpoint(opts.S3Endpoint))
		}
		s, err = s3store.New(ctx, loc.Bucket, s3opts...)
	case store.SchemeHTTP, store.SchemeHTTPS:
		if mode == Write {
			return nil, fmt.Errorf("%s: %w", location, store.ErrReadOnly)
		}
		s = httpstore.New()
	default:
		return nil, fmt.Errorf("%w: unsupported scheme %q", store.ErrInvalidLocation, loc.Scheme)
	}
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", location, err)
	}

	return &Target{Store: s, Name: name, Location: loc}, nil
}

// splitKey separates an object key into the directory used as the store
// prefix and the final element used as the object name.
func splitKey(key string) (prefix, name string) {
	dir := path.Dir(key)
	if dir == "." || dir == "/" {
		dir = ""
	}
	return dir, path.Base(key)
}
