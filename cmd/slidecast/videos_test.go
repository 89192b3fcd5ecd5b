package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestVideosListAndDelete(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "slides_20260101_000000_abcd1234.mp4"), []byte("video"), 0o644))

	out, err := runCLI(t, "videos", "list", "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "slides_20260101_000000_abcd1234.mp4")
	assert.Contains(t, out, "NAME")

	out, err = runCLI(t, "videos", "delete", "--dir", dir, "slides_20260101_000000_abcd1234.mp4")
	require.NoError(t, err)
	assert.Contains(t, out, "deleted")
	assert.NoFileExists(t, filepath.Join(dir, "slides_20260101_000000_abcd1234.mp4"))

	_, err = runCLI(t, "videos", "delete", "--dir", dir, "slides_20260101_000000_abcd1234.mp4")
	assert.Error(t, err)

	_, err = runCLI(t, "videos", "delete", "--dir", dir, "../escape.mp4")
	assert.Error(t, err)
}

func TestRenderRequiresDeck(t *testing.T) {
	_, err := runCLI(t, "render")
	assert.Error(t, err)

	_, err = runCLI(t, "render", filepath.Join(t.TempDir(), "missing.pdf"))
	assert.Error(t, err)
}
