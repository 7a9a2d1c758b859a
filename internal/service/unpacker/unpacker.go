// Package unpacker expands the bundler's package.nw archive in place so the
// updater can patch individual files. Mac builds keep an app.nw folder and
// are left untouched.
package unpacker

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/oshokin/client-release/internal/archive"
	"github.com/oshokin/client-release/internal/config"
	"github.com/oshokin/client-release/internal/domain/build"
	"github.com/oshokin/client-release/internal/fsutil"
	"github.com/oshokin/client-release/internal/logger"
)

const (
	// PackageArchive is the zipped app the bundler leaves next to the runtime.
	PackageArchive = "package.nw"
	// PackageDir receives the extracted app.
	PackageDir = "package"
)

// hoisted entries live next to the runtime so it resolves modules the same
// way it did from the archive.
//
//nolint:gochecknoglobals // Fixed layout.
var hoisted = []string{"node_modules", "package.json"}

// Unpacker runs the unpack stage.
type Unpacker struct {
	cfg *config.Config
	now func() time.Time
}

// New creates an Unpacker. now defaults to time.Now.
func New(cfg *config.Config, now func() time.Time) *Unpacker {
	if now == nil {
		now = time.Now
	}

	return &Unpacker{
		cfg: cfg,
		now: now,
	}
}

// Unpack extracts package.nw, hoists node_modules and package.json and
// moves the archive into the trash. A missing archive is not an error, so
// the stage can be re-run.
func (u *Unpacker) Unpack(ctx context.Context) error {
	if u.cfg.Platform == build.PlatformMac {
		logger.Debug(ctx, "Mac bundles are not unpacked")

		return nil
	}

	base := u.cfg.RawPackageDir()
	packageNw := filepath.Join(base, PackageArchive)

	if _, err := os.Stat(packageNw); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.InfoKV(ctx, "Nothing to unpack", "path", packageNw)

			return nil
		}

		return fmt.Errorf("%w: stat %s: %w", build.ErrFileSystem, packageNw, err)
	}

	extractDir := filepath.Join(base, PackageDir)

	logger.InfoKV(ctx, "Unpacking application archive", "from", packageNw, "to", extractDir)

	// ExtractZip returns only after the archive handle is closed, which some
	// platforms require before the file can be moved.
	if _, err := archive.ExtractZip(packageNw, extractDir); err != nil {
		return fmt.Errorf("%w: extract %s: %w", build.ErrFileSystem, packageNw, err)
	}

	for _, name := range hoisted {
		src := filepath.Join(extractDir, name)
		dst := filepath.Join(base, name)

		if _, err := os.Stat(src); errors.Is(err, os.ErrNotExist) {
			continue
		}

		if err := os.RemoveAll(dst); err != nil {
			return fmt.Errorf("%w: remove %s: %w", build.ErrFileSystem, dst, err)
		}

		if err := fsutil.Move(src, dst); err != nil {
			return err
		}
	}

	trashed, err := fsutil.Trash(packageNw, u.cfg.TrashDir(), u.now())
	if err != nil {
		return err
	}

	logger.InfoKV(ctx, "Moved application archive to trash", "path", trashed)

	return nil
}
