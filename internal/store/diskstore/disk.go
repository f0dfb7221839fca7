// Package diskstore implements a local filesystem storage backend.
package diskstore

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/discochess/marlinflow/internal/store"
)

// Compile-time check that Store implements store.Store.
var _ store.Store = (*Store)(nil)

// Store is a local filesystem storage backend.
// Object names are slash-separated paths relative to the root.
type Store struct {
	root string
}

// New creates a new disk store rooted at the given directory.
// The directory must exist.
func New(root string) (*Store, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat root directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", root)
	}

	return &Store{root: root}, nil
}

// Open opens the named file for reading.
func (s *Store) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	// Check for cancellation before starting I/O.
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	f, err := os.Open(s.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", name, store.ErrNotFound)
		}
		return nil, fmt.Errorf("opening %s: %w", name, err)
	}
	return f, nil
}

// Create writes to a temporary file in the target directory; Commit renames
// it into place.
func (s *Store) Create(ctx context.Context, name string) (store.Object, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	final := s.path(name)
	dir := filepath.Dir(final)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(final)+".tmp-*")
	if err != nil {
		return nil, fmt.Errorf("creating temp file: %w", err)
	}

	return &object{file: tmp, final: final}, nil
}

// Close releases any resources held by the store.
func (s *Store) Close() error {
	return nil
}

// path returns the filesystem path for an object name.
func (s *Store) path(name string) string {
	return filepath.Join(s.root, filepath.FromSlash(name))
}

// object is a temp file that becomes visible at final on Commit.
type object struct {
	file  *os.File
	final string
	done  bool
}

func (o *object) Write(p []byte) (int, error) {
	if o.done {
		return 0, store.ErrFinished
	}
	return o.file.Write(p)
}

func (o *object) Commit() error {
	if o.done {
		return store.ErrFinished
	}
	o.done = true

	if err := o.file.Sync(); err != nil {
		o.file.Close()
		os.Remove(o.file.Name())
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := o.file.Close(); err != nil {
		os.Remove(o.file.Name())
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(o.file.Name(), 0644); err != nil {
		os.Remove(o.file.Name())
		return fmt.Errorf("setting permissions: %w", err)
	}
	if err := os.Rename(o.file.Name(), o.final); err != nil {
		os.Remove(o.file.Name())
		return fmt.Errorf("renaming into place: %w", err)
	}
	return nil
}

func (o *object) Abort() error {
	if o.done {
		return nil
	}
	o.done = true

	o.file.Close()
	if err := os.Remove(o.file.Name()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing temp file: %w", err)
	}
	return nil
}
