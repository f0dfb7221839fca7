// Package memstore provides an in-memory store implementation for testing.
package memstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/discochess/marlinflow/internal/store"
)

// Compile-time check that Store implements store.Store.
var _ store.Store = (*Store)(nil)

// Store is an in-memory store for testing.
type Store struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		objects: make(map[string][]byte),
	}
}

// Put sets the data for an object (for test setup).
// The data is copied to prevent caller mutations from affecting the store.
func (s *Store) Put(name string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[name] = bytes.Clone(data)
}

// Get returns a copy of a committed object.
func (s *Store) Get(name string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.objects[name]
	return bytes.Clone(data), ok
}

// Names returns the names of all committed objects, sorted.
func (s *Store) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.objects))
	for name := range s.objects {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Open returns a reader over a committed object.
func (s *Store) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.objects[name]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, store.ErrNotFound)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// Create returns an object buffered in memory until Commit.
func (s *Store) Create(ctx context.Context, name string) (store.Object, error) {
	return &object{store: s, name: name}, nil
}

// Close is a no-op for the memory store.
func (s *Store) Close() error {
	return nil
}

type object struct {
	store *Store
	name  string
	buf   bytes.Buffer
	done  bool
}

func (o *object) Write(p []byte) (int, error) {
	if o.done {
		return 0, store.ErrFinished
	}
	return o.buf.Write(p)
}

func (o *object) Commit() error {
	if o.done {
		return store.ErrFinished
	}
	o.done = true
	o.store.Put(o.name, o.buf.Bytes())
	return nil
}

func (o *object) Abort() error {
	o.done = true
	return nil
}
