package httpstore

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/discochess/marlinflow/internal/store"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/WC.txt", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "7k/8/8/8/8/pb6/8/1K6 w - - 0;154;b1a1;-566;0;\n")
	})
	mux.HandleFunc("/broken", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestStore_Open(t *testing.T) {
	srv := newServer(t)
	s := New(WithHTTPClient(srv.Client()))
	defer s.Close()

	rc, err := s.Open(context.Background(), srv.URL+"/WC.txt")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer rc.Close()

	got, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if string(got) != "7k/8/8/8/8/pb6/8/1K6 w - - 0;154;b1a1;-566;0;\n" {
		t.Errorf("Open() content = %q", got)
	}
}

func TestStore_Open_NotFound(t *testing.T) {
	srv := newServer(t)
	s := New(WithHTTPClient(srv.Client()))

	_, err := s.Open(context.Background(), srv.URL+"/missing")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Open() error = %v, want ErrNotFound", err)
	}
}

func TestStore_Open_ServerError(t *testing.T) {
	srv := newServer(t)
	s := New(WithHTTPClient(srv.Client()))

	_, err := s.Open(context.Background(), srv.URL+"/broken")
	if err == nil || errors.Is(err, store.ErrNotFound) {
		t.Errorf("Open() error = %v, want status error", err)
	}
}

func TestStore_Create_ReadOnly(t *testing.T) {
	s := New()
	_, err := s.Create(context.Background(), "https://example.com/out.txt")
	if !errors.Is(err, store.ErrReadOnly) {
		t.Errorf("Create() error = %v, want ErrReadOnly", err)
	}
}
