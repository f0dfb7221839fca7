// Package gcsstore implements a Google Cloud Storage backend.
package gcsstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"

	"github.com/discochess/marlinflow/internal/store"
)

// Compile-time check that Store implements store.Store.
var _ store.Store = (*Store)(nil)

// Store is a Google Cloud Storage backend.
type Store struct {
	client *storage.Client
	bucket *storage.BucketHandle
	prefix string
}

// New creates a new GCS store.
// The bucket must already exist.
func New(ctx context.Context, bucketName string, opts ...Option) (*Store, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating GCS client: %w", err)
	}

	s := &Store{
		client: client,
		bucket: client.Bucket(bucketName),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// Option configures a Store.
type Option func(*Store)

// WithPrefix sets a key prefix for all operations.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = normalizePrefix(prefix)
	}
}

func normalizePrefix(prefix string) string {
	prefix = strings.Trim(prefix, "/")
	if prefix != "" {
		prefix += "/"
	}
	return prefix
}

// Open returns a reader for the named object.
func (s *Store) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	// Check for cancellation before starting.
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	reader, err := s.bucket.Object(s.key(name)).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, fmt.Errorf("%s: %w", name, store.ErrNotFound)
		}
		return nil, fmt.Errorf("creating reader: %w", err)
	}
	return reader, nil
}

// Create starts an upload. GCS only finalizes an object when its writer is
// closed, so Commit closes the writer and Abort cancels the upload.
func (s *Store) Create(ctx context.Context, name string) (store.Object, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	uploadCtx, cancel := context.WithCancel(ctx)
	writer := s.bucket.Object(s.key(name)).NewWriter(uploadCtx)
	writer.ContentType = "text/plain"

	return &object{writer: writer, cancel: cancel}, nil
}

// Close releases resources.
func (s *Store) Close() error {
	return s.client.Close()
}

// key returns the full object key for a name.
func (s *Store) key(name string) string {
	return s.prefix + strings.TrimPrefix(name, "/")
}

type object struct {
	writer *storage.Writer
	cancel context.CancelFunc
	done   bool
}

func (o *object) Write(p []byte) (int, error) {
	if o.done {
		return 0, store.ErrFinished
	}
	return o.writer.Write(p)
}

func (o *object) Commit() error {
	if o.done {
		return store.ErrFinished
	}
	o.done = true
	defer o.cancel()

	if err := o.writer.Close(); err != nil {
		return fmt.Errorf("finalizing upload: %w", err)
	}
	return nil
}

func (o *object) Abort() error {
	if o.done {
		return nil
	}
	o.done = true

	// Cancelling the context before Close discards the upload.
	o.cancel()
	_ = o.writer.Close()
	return nil
}
