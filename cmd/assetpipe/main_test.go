package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRun_ShouldExit(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// The "-h" (help) flag should cause cli.Parse to return `shouldExit=true`.
	out := &bytes.Buffer{}

	// --- Act ---
	err := run(context.Background(), out, []string{"-h"})

	// --- Assert ---
	require.NoError(t, err, "run() should return a nil error when shouldExit is true")
	require.Contains(t, out.String(), "Usage:", "Expected help text to be printed to the output buffer")
}

func TestRun_ParseError(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// Providing an unknown flag will cause cli.Parse to return an error.
	out := &bytes.Buffer{}

	// --- Act ---
	err := run(context.Background(), out, []string{"build", "--this-is-not-a-valid-flag"})

	// --- Assert ---
	require.Error(t, err, "run() should return an error when argument parsing fails")
	require.Contains(t, err.Error(), "unknown flag: --this-is-not-a-valid-flag")
}

func TestRun_BuildsManifest(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "assets.json"), []byte(`{
		// comments are allowed
		"assets": [{"name": "readme.txt"}, {"name": "logo.png"}]
	}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("hi"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "logo.png"), []byte("png"), 0o644))
	out := &bytes.Buffer{}

	// --- Act ---
	err := run(context.Background(), out, []string{"build", dir, "--log-level", "error"})

	// --- Assert ---
	require.NoError(t, err)
	require.Contains(t, out.String(), "Loaded 2 of 2 assets")
}

func TestRun_BuildFailureIsAnError(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// The manifest names a file that does not exist.
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "assets.yaml"), []byte("assets:\n  - name: missing.png\n"), 0o644))

	// --- Act ---
	err := run(context.Background(), &bytes.Buffer{}, []string{"build", dir, "--log-level", "error"})

	// --- Assert ---
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to build or load")
}
