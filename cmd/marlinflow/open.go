package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/viper"

	"github.com/discochess/marlinflow/internal/codec"
	"github.com/discochess/marlinflow/internal/store/resolve"
)

// readCloser closes a decompressor, its source and the backend in order.
type readCloser struct {
	io.Reader
	closers []io.Closer
}

func (r *readCloser) Close() error {
	var first error
	for _, c := range r.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// openLocation opens a location for reading, decompressing by extension.
func openLocation(ctx context.Context, location string) (io.ReadCloser, error) {
	target, err := resolve.Resolve(ctx, location, resolve.Read, resolve.Options{
		S3Region:   viper.GetString(keyS3Region),
		S3Endpoint: viper.GetString(keyS3Endpoint),
	})
	if err != nil {
		return nil, err
	}

	raw, err := target.Store.Open(ctx, target.Name)
	if err != nil {
		target.Close()
		return nil, fmt.Errorf("opening %s: %w", location, err)
	}

	dec, err := codec.ForPath(target.Name).Reader(raw)
	if err != nil {
		raw.Close()
		target.Close()
		return nil, fmt.Errorf("decoding %s: %w", location, err)
	}

	return &readCloser{Reader: dec, closers: []io.Closer{dec, raw, target}}, nil
}
