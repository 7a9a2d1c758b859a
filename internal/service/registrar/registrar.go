// Package registrar resolves the build id the distribution service assigned
// to a freshly published package artifact.
package registrar

import (
	"context"
	"fmt"

	"github.com/oshokin/client-release/internal/api/distribution"
	"github.com/oshokin/client-release/internal/domain/build"
	"github.com/oshokin/client-release/internal/logger"
)

// API is the part of the distribution client the registrar needs.
type API interface {
	ReleaseByVersion(ctx context.Context, packageID int64, version string) (*distribution.Release, error)
	ListBuilds(ctx context.Context, releaseID, gameID, packageID int64) ([]*distribution.Build, error)
}

// Options identifies the release to look up.
type Options struct {
	GameID    int64
	PackageID int64
	// Version is the release version the package was published under.
	Version string
}

// Registrar runs the build-id stage in publish mode.
type Registrar struct {
	api  API
	opts Options
}

// New creates a Registrar.
func New(api API, opts Options) *Registrar {
	return &Registrar{
		api:  api,
		opts: opts,
	}
}

// ResolveBuildID finds the build whose uploaded filename matches the artifact.
func (r *Registrar) ResolveBuildID(ctx context.Context, artifact build.PackageArtifact) (int64, error) {
	filename := artifact.Filename()

	release, err := r.api.ReleaseByVersion(ctx, r.opts.PackageID, r.opts.Version)
	if err != nil {
		return 0, err
	}

	logger.DebugKV(ctx, "Resolved release", "release_id", release.ID, "version", r.opts.Version)

	builds, err := r.api.ListBuilds(ctx, release.ID, r.opts.GameID, r.opts.PackageID)
	if err != nil {
		return 0, err
	}

	for _, b := range builds {
		if b != nil && b.File.Filename == filename {
			logger.InfoKV(ctx, "Resolved build id", "build_id", b.ID, "filename", filename)

			return b.ID, nil
		}
	}

	return 0, fmt.Errorf("%w: %s in release %d (%d builds)", build.ErrBuildNotFound, filename, release.ID, len(builds))
}
