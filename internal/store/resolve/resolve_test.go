package resolve

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/discochess/marlinflow/internal/store"
	"github.com/discochess/marlinflow/internal/store/diskstore"
	"github.com/discochess/marlinflow/internal/store/httpstore"
)

func TestResolve_LocalRead(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "WC.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello\n"), 0o644))

	target, err := Resolve(context.Background(), path, Read, Options{})
	require.NoError(t, err)
	defer target.Close()

	assert.IsType(t, &diskstore.Store{}, target.Store)
	assert.Equal(t, "WC.txt", target.Name)
	assert.Equal(t, store.SchemeFile, target.Location.Scheme)

	rc, err := target.Store.Open(context.Background(), target.Name)
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(data))
}

func TestResolve_LocalWriteCreatesDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "out.txt")

	target, err := Resolve(context.Background(), path, Write, Options{})
	require.NoError(t, err)
	defer target.Close()

	info, err := os.Stat(filepath.Dir(path))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, "out.txt", target.Name)
}

func TestResolve_LocalReadMissingDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "in.txt")

	_, err := Resolve(context.Background(), path, Read, Options{})
	assert.Error(t, err)
}

func TestResolve_HTTP(t *testing.T) {
	const url = "https://example.com/data/sf_d9.plain.zst"

	target, err := Resolve(context.Background(), url, Read, Options{})
	require.NoError(t, err)
	defer target.Close()

	assert.IsType(t, &httpstore.Store{}, target.Store)
	assert.Equal(t, url, target.Name)

	_, err = Resolve(context.Background(), url, Write, Options{})
	assert.ErrorIs(t, err, store.ErrReadOnly)
}

func TestResolve_InvalidLocation(t *testing.T) {
	for _, loc := range []string{"", "ftp://host/file", "gs://bucket/", "s3:///key"} {
		_, err := Resolve(context.Background(), loc, Read, Options{})
		assert.ErrorIs(t, err, store.ErrInvalidLocation, "location %q", loc)
	}
}

func TestSplitKey(t *testing.T) {
	tests := []struct {
		key, prefix, name string
	}{
		{"sf_d9.plain", "", "sf_d9.plain"},
		{"data/sf_d9.plain", "data", "sf_d9.plain"},
		{"a/b/c/out.txt.zst", "a/b/c", "out.txt.zst"},
	}
	for _, tt := range tests {
		prefix, name := splitKey(tt.key)
		assert.Equal(t, tt.prefix, prefix, "key %q", tt.key)
		assert.Equal(t, tt.name, name, "key %q", tt.key)
	}
}
