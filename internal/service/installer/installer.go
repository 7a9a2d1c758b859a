// Package installer turns the updater directory layout into the platform's
// distributable: a disk image on mac, a signed setup executable on windows
// and a plain tarball on linux. The platform is chosen once in New.
package installer

import (
	"context"

	"github.com/oshokin/client-release/internal/config"
	"github.com/oshokin/client-release/internal/domain/build"
	"github.com/oshokin/client-release/internal/process"
	manifestrepo "github.com/oshokin/client-release/internal/repository/manifest"
)

// Packager builds the installer for one platform.
type Packager interface {
	Package(ctx context.Context) (build.InstallerArtifact, error)
}

// New selects the Packager for cfg.Platform.
func New(cfg *config.Config, runner process.Runner, manifests manifestrepo.Repository) Packager {
	switch cfg.Platform {
	case build.PlatformMac:
		return &macPackager{cfg: cfg, runner: runner}
	case build.PlatformWindows:
		return &windowsPackager{cfg: cfg, runner: runner, manifests: manifests}
	default:
		return &linuxPackager{cfg: cfg}
	}
}
