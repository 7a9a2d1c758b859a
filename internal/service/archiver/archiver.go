// Package archiver compresses the bundled client into the package artifact
// uploaded to the distribution service.
package archiver

import (
	"context"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"

	"github.com/oshokin/client-release/internal/archive"
	"github.com/oshokin/client-release/internal/config"
	"github.com/oshokin/client-release/internal/domain/build"
	"github.com/oshokin/client-release/internal/logger"
)

// Archiver runs the archive-package stage.
type Archiver struct {
	cfg *config.Config
}

// New creates an Archiver.
func New(cfg *config.Config) *Archiver {
	return &Archiver{cfg: cfg}
}

// Archive writes a portable tar.gz of build/{platformArch} and returns the artifact.
func (a *Archiver) Archive(ctx context.Context) (build.PackageArtifact, error) {
	src := a.cfg.RawPackageDir()
	dest := a.cfg.PackageArchivePath()

	logger.InfoKV(ctx, "Archiving package", "from", src, "to", dest)

	if err := archive.CreateTarGz(src, dest); err != nil {
		return build.PackageArtifact{}, err
	}

	info, err := os.Stat(dest)
	if err != nil {
		return build.PackageArtifact{}, fmt.Errorf("%w: stat %s: %w", build.ErrFileSystem, dest, err)
	}

	logger.InfoKV(ctx, "Package archived", "size", humanize.Bytes(uint64(info.Size()))) //nolint:gosec // Sizes are non-negative.

	return build.PackageArtifact{
		Path:         dest,
		PlatformArch: a.cfg.PlatformArch(),
	}, nil
}
