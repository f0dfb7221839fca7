// Package store defines the storage backends converters read their input from
// and commit their output to.
package store

import (
	"context"
	"errors"
	"io"
)

// Sentinel errors shared by all backends.
var (
	// ErrNotFound is returned when an object does not exist in the store.
	ErrNotFound = errors.New("store: object not found")

	// ErrReadOnly is returned by Create on backends that cannot be written.
	ErrReadOnly = errors.New("store: backend is read-only")

	// ErrFinished is returned when writing to an object after Commit or Abort.
	ErrFinished = errors.New("store: object already committed or aborted")
)

// Store defines the interface for storage backends.
// Implementations handle path formats and storage details internally.
type Store interface {
	// Open returns a reader for the named object.
	// It returns ErrNotFound if the object does not exist.
	Open(ctx context.Context, name string) (io.ReadCloser, error)

	// Create starts writing the named object. Nothing becomes visible under
	// name until Commit returns successfully.
	Create(ctx context.Context, name string) (Object, error)

	// Close releases any resources held by the store.
	Close() error
}

// Object is an object being written.
//
// Exactly one of Commit or Abort takes effect; calling Abort after a
// successful Commit is a no-op, so callers may defer Abort unconditionally.
type Object interface {
	io.Writer

	// Commit publishes the written data under the object's name.
	Commit() error

	// Abort discards the written data.
	Abort() error
}
