package runner

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/discochess/marlinflow/internal/store"
)

// ManifestSuffix is appended to the output name to name its manifest.
const ManifestSuffix = ".manifest.json"

// ManifestVersion is the current manifest format version.
const ManifestVersion = 1

// Manifest describes a finished conversion so that it can be audited and
// replayed.
type Manifest struct {
	Version        int       `json:"version"`
	Converter      string    `json:"converter"`
	Settings       any       `json:"settings,omitempty"`
	Input          string    `json:"input"`
	Output         string    `json:"output"`
	LinesRead      int64     `json:"lines_read"`
	RecordsWritten int64     `json:"records_written"`
	StartedAt      time.Time `json:"started_at"`
	FinishedAt     time.Time `json:"finished_at"`
}

// ManifestName returns the manifest object name for an output.
func ManifestName(output string) string {
	return output + ManifestSuffix
}

// WriteManifest commits m as indented JSON to name in s.
func WriteManifest(ctx context.Context, s store.Store, name string, m *Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}
	data = append(data, '\n')

	obj, err := s.Create(ctx, name)
	if err != nil {
		return fmt.Errorf("creating manifest: %w", err)
	}
	defer obj.Abort()

	if _, err := obj.Write(data); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	if err := obj.Commit(); err != nil {
		return fmt.Errorf("committing manifest: %w", err)
	}
	return nil
}

// ReadManifest reads a manifest from s. Settings are decoded as generic JSON.
func ReadManifest(ctx context.Context, s store.Store, name string) (*Manifest, error) {
	rc, err := s.Open(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("opening manifest: %w", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	return &m, nil
}
