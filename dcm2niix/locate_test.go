package dcm2niix

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeConverter(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, binaryName)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755))
	return path
}

func TestLocateEnvOverrideWins(t *testing.T) {
	dir := t.TempDir()
	fake := fakeConverter(t, dir, "exit 0\n")
	t.Setenv(EnvBinary, fake)

	got, err := Locate(filepath.Join(t.TempDir(), "ignored"))
	require.NoError(t, err)
	assert.Equal(t, fake, got)
}

func TestLocateUsesConfiguredPath(t *testing.T) {
	t.Setenv(EnvBinary, "")
	dir := t.TempDir()
	fake := fakeConverter(t, dir, "exit 0\n")

	got, err := Locate(fake)
	require.NoError(t, err)
	assert.Equal(t, fake, got)
}

func TestLocateFallsBackToPath(t *testing.T) {
	t.Setenv(EnvBinary, "")
	dir := t.TempDir()
	fake := fakeConverter(t, dir, "exit 0\n")
	t.Setenv("PATH", dir)

	got, err := Locate("")
	require.NoError(t, err)
	assert.Equal(t, fake, got)
}

func TestLocateMissingWrapsErrNotFound(t *testing.T) {
	t.Setenv(EnvBinary, "")
	t.Setenv("PATH", t.TempDir())

	_, err := Locate("")
	require.Error(t, err)
	assert.True(t, errors.Is(err, exec.ErrNotFound), "err=%v", err)
}
