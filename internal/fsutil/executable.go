package fsutil

import (
	"bytes"
	"crypto"
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	goupdate "github.com/doitdistributed/go-update"

	"github.com/oshokin/client-release/internal/domain/build"
)

// ExecutableMode sets the execute bits for owner, group and others.
const ExecutableMode os.FileMode = 0o755

// InstallExecutable atomically replaces dest with data and marks it executable.
// The written bytes are verified against their SHA-256 before the swap.
// When oldSavePath is set the replaced file is moved there; otherwise it is
// removed, or left hidden next to dest where the OS keeps it locked.
func InstallExecutable(data []byte, dest, oldSavePath string) error {
	dest = filepath.Clean(dest)

	if err := os.MkdirAll(filepath.Dir(dest), DirMode); err != nil {
		return fmt.Errorf("%w: %w", build.ErrFileSystem, err)
	}

	if oldSavePath != "" {
		oldSavePath = filepath.Clean(oldSavePath)

		if err := os.MkdirAll(filepath.Dir(oldSavePath), DirMode); err != nil {
			return fmt.Errorf("%w: %w", build.ErrFileSystem, err)
		}
	}

	// go-update renames the previous target aside, so one has to exist.
	if _, err := os.Stat(dest); errors.Is(err, os.ErrNotExist) {
		f, createErr := os.Create(dest)
		if createErr != nil {
			return fmt.Errorf("%w: create %s: %w", build.ErrFileSystem, dest, createErr)
		}

		_ = f.Close()
	}

	checksum := sha256.Sum256(data)

	options := goupdate.Options{
		TargetPath:  dest,
		TargetMode:  ExecutableMode,
		Checksum:    checksum[:],
		Hash:        crypto.SHA256,
		OldSavePath: oldSavePath,
	}

	if err := goupdate.Apply(bytes.NewReader(data), options); err != nil {
		return fmt.Errorf("%w: install %s: %w", build.ErrFileSystem, dest, err)
	}

	// TargetMode is filtered by the umask.
	if err := os.Chmod(dest, ExecutableMode); err != nil {
		return fmt.Errorf("%w: chmod %s: %w", build.ErrFileSystem, dest, err)
	}

	return nil
}

// CopyExecutable installs a copy of src at dest with ExecutableMode.
// oldSavePath is handled as in InstallExecutable.
func CopyExecutable(src, dest, oldSavePath string) error {
	data, err := os.ReadFile(filepath.Clean(src))
	if err != nil {
		return fmt.Errorf("%w: read %s: %w", build.ErrFileSystem, src, err)
	}

	return InstallExecutable(data, dest, oldSavePath)
}
