package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/discochess/marlinflow/internal/convert/sfd9"
)

func TestSFD9Config_Defaults(t *testing.T) {
	initConfig()

	cfg, err := sfd9Config()
	require.NoError(t, err)

	assert.Equal(t, sfd9.PresetLarge.MaxLines, cfg.MaxLines)
	assert.Equal(t, sfd9.PresetLarge.MaxSamples, cfg.MaxSamples)
	assert.Equal(t, sfd9.PresetLarge.SkipLow, cfg.SkipLow)
	assert.Equal(t, sfd9.PresetLarge.SkipHigh, cfg.SkipHigh)
	assert.NotZero(t, cfg.Seed)
}

func TestSFD9Config_Environment(t *testing.T) {
	initConfig()
	t.Setenv("MARLINFLOW_SFD9_PRESET", "small")
	t.Setenv("MARLINFLOW_SFD9_MAX_SAMPLES", "10")
	t.Setenv("MARLINFLOW_SFD9_SEED", "5")

	cfg, err := sfd9Config()
	require.NoError(t, err)

	assert.Equal(t, sfd9.Config{MaxLines: 50_000_000, MaxSamples: 10, SkipLow: 15, SkipHigh: 50, Seed: 5}, cfg)
}

func TestSFD9Config_Invalid(t *testing.T) {
	initConfig()
	t.Setenv("MARLINFLOW_SFD9_SKIP_LOW", "9")
	t.Setenv("MARLINFLOW_SFD9_SKIP_HIGH", "3")

	_, err := sfd9Config()
	assert.ErrorIs(t, err, sfd9.ErrInvalidConfig)
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestConvertWhiteCore(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "WC.txt")
	out := filepath.Join(dir, "WC_marlinflow.txt")
	require.NoError(t, os.WriteFile(in, []byte("8/8/8/8/8/pb6/8/1K6 w - - 0;154;b1a1;-566;0;\n"), 0o644))

	_, err := execute(t, "convert", "whitecore", "--input", in, "--output", out)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "8/8/8/8/8/pb6/8/1K6 w - - 0 1 | -566 | 0.0\n", string(data))
	assert.FileExists(t, out+".manifest.json")

	got, err := execute(t, "verify", out)
	require.NoError(t, err)
	assert.Contains(t, got, "Verified 1 records.")

	got, err = execute(t, "stats", out)
	require.NoError(t, err)
	assert.Contains(t, got, "Records:        1")
}

func TestConvertWhiteCore_ParseErrorLeavesNoOutput(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "WC.txt")
	out := filepath.Join(dir, "WC_marlinflow.txt")
	require.NoError(t, os.WriteFile(in, []byte("not;enough\n"), 0o644))

	got, err := execute(t, "convert", "whitecore", "--input", in, "--output", out)
	require.Error(t, err)
	assert.Contains(t, got, "line 1")
	assert.NoFileExists(t, out)
}

func TestManifestLocation(t *testing.T) {
	tests := []struct {
		output, want string
	}{
		{"s3://bucket/data/out.txt", "s3://bucket/data/out.txt.manifest.json"},
		{"gs://bucket/out.txt.zst", "gs://bucket/out.txt.zst.manifest.json"},
		{filepath.Join("data", "out.txt"), filepath.Join("data", "out.txt.manifest.json")},
	}
	for _, tt := range tests {
		if got := manifestLocation(tt.output); got != tt.want {
			t.Errorf("manifestLocation(%q) = %q, want %q", tt.output, got, tt.want)
		}
	}
}

func TestVersion(t *testing.T) {
	got, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "marlinflow dev\n", got)
}
