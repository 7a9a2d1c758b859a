package fsutil

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestInstallExecutable creates, then overwrites, an executable file.
func TestInstallExecutable(t *testing.T) {
	t.Parallel()

	dest := filepath.Join(t.TempDir(), "bin", "gcpush")

	require.NoError(t, InstallExecutable([]byte("v1"), dest, ""))
	require.NoError(t, InstallExecutable([]byte("v2"), dest, ""))

	contents, err := os.ReadFile(dest)
	require.NoError(t, err)
	require.Equal(t, "v2", string(contents))

	if runtime.GOOS != "windows" {
		info, err := os.Stat(dest)
		require.NoError(t, err)
		require.Equal(t, ExecutableMode, info.Mode().Perm())
	}
}

// TestInstallExecutable_OldSavePath moves the replaced file out of the target directory.
func TestInstallExecutable_OldSavePath(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	binDir := filepath.Join(dir, "build")
	dest := filepath.Join(binDir, "GamingChannelClient.exe")
	oldPath := filepath.Join(dir, ".trash", "GamingChannelClient.exe.old")

	require.NoError(t, InstallExecutable([]byte("v1"), dest, oldPath))
	require.NoError(t, InstallExecutable([]byte("v2"), dest, oldPath))

	contents, err := os.ReadFile(oldPath)
	require.NoError(t, err)
	require.Equal(t, "v1", string(contents))

	entries, err := os.ReadDir(binDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "GamingChannelClient.exe", entries[0].Name())
}

// TestCopyExecutable copies identical bytes under a new name.
func TestCopyExecutable(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(dir, "joltron")
	require.NoError(t, os.WriteFile(src, []byte("updater"), 0o600))

	dest := filepath.Join(dir, "gaming-channel-client")
	require.NoError(t, CopyExecutable(src, dest, ""))

	contents, err := os.ReadFile(dest)
	require.NoError(t, err)
	require.Equal(t, "updater", string(contents))

	require.Error(t, CopyExecutable(filepath.Join(dir, "missing"), dest, ""))
}
