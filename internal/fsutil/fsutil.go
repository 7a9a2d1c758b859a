// Package fsutil holds the filesystem operations shared by the stages:
// moves that survive device boundaries, tree copies, trashing, executable
// installation and the normalized recursive file listing used by the manifest.
package fsutil

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/otiai10/copy"

	"github.com/oshokin/client-release/internal/domain/build"
)

// DirMode is used for directories the pipeline creates.
const DirMode os.FileMode = 0o755

// Move renames src to dst, falling back to copy and remove across devices.
func Move(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), DirMode); err != nil {
		return fmt.Errorf("%w: %w", build.ErrFileSystem, err)
	}

	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}

	if !errors.Is(err, syscall.EXDEV) {
		return fmt.Errorf("%w: move %s: %w", build.ErrFileSystem, src, err)
	}

	if err = CopyTree(src, dst); err != nil {
		return err
	}

	if err = os.RemoveAll(src); err != nil {
		return fmt.Errorf("%w: remove %s: %w", build.ErrFileSystem, src, err)
	}

	return nil
}

// CopyTree copies a file or directory, hidden entries included, keeping
// permissions and copying symlinks as links.
func CopyTree(src, dst string) error {
	opts := copy.Options{
		OnSymlink: func(string) copy.SymlinkAction {
			return copy.Shallow
		},
		PreserveTimes: true,
	}

	if err := copy.Copy(src, dst, opts); err != nil {
		return fmt.Errorf("%w: copy %s to %s: %w", build.ErrFileSystem, src, dst, err)
	}

	return nil
}

// Trash moves path into trashDir under "{base}-{unixMillis}" and returns the new path.
// Used for files that some platforms refuse to delete while a handle lingers.
func Trash(path, trashDir string, now time.Time) (string, error) {
	if err := os.MkdirAll(trashDir, DirMode); err != nil {
		return "", fmt.Errorf("%w: create trash dir: %w", build.ErrFileSystem, err)
	}

	target := filepath.Join(trashDir, filepath.Base(path)+"-"+strconv.FormatInt(now.UnixMilli(), 10))
	if err := Move(path, target); err != nil {
		return "", err
	}

	return target, nil
}

// ListFiles returns every non-hidden file below root as "./"-prefixed,
// forward-slash relative paths, sorted ascending. Hidden files and
// directories (leading dot) are skipped.
func ListFiles(root string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if path == root {
			return nil
		}

		if strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}

			return nil
		}

		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		files = append(files, "./"+strings.ReplaceAll(filepath.ToSlash(rel), `\`, "/"))

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: list %s: %w", build.ErrFileSystem, root, err)
	}

	sort.Strings(files)

	return files, nil
}
