package fsutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, contents string) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), DirMode))
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
}

// TestListFiles checks ordering, slash normalization and hidden-entry filtering.
func TestListFiles(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "b.txt"), "b")
	writeFile(t, filepath.Join(root, "a", "z.js"), "z")
	writeFile(t, filepath.Join(root, "a", "b", "c.dll"), "c")
	writeFile(t, filepath.Join(root, ".hidden"), "h")
	writeFile(t, filepath.Join(root, ".git", "config"), "g")
	writeFile(t, filepath.Join(root, "A.txt"), "A")

	files, err := ListFiles(root)
	require.NoError(t, err)
	require.Equal(t, []string{"./A.txt", "./a/b/c.dll", "./a/z.js", "./b.txt"}, files)
}

// TestMoveAndTrash relocates a file into the trash directory with a timestamped name.
func TestMoveAndTrash(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(dir, "package.nw")
	writeFile(t, src, "zip")

	now := time.UnixMilli(1700000000123)

	target, err := Trash(src, filepath.Join(dir, ".trash"), now)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, ".trash", "package.nw-1700000000123"), target)

	_, err = os.Stat(src)
	require.ErrorIs(t, err, os.ErrNotExist)

	contents, err := os.ReadFile(target)
	require.NoError(t, err)
	require.Equal(t, "zip", string(contents))
}

// TestCopyTree copies hidden files and keeps permissions.
func TestCopyTree(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	dst := filepath.Join(t.TempDir(), "copy")

	writeFile(t, filepath.Join(src, ".manifest"), "{}")
	writeFile(t, filepath.Join(src, "bin", "tool"), "#!/bin/sh")
	require.NoError(t, os.Chmod(filepath.Join(src, "bin", "tool"), 0o755))

	require.NoError(t, CopyTree(src, dst))

	_, err := os.Stat(filepath.Join(dst, ".manifest"))
	require.NoError(t, err)

	info, err := os.Stat(filepath.Join(dst, "bin", "tool"))
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o755), info.Mode().Perm())
}
