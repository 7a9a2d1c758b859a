package installer

import (
	"context"

	"github.com/oshokin/client-release/internal/archive"
	"github.com/oshokin/client-release/internal/config"
	"github.com/oshokin/client-release/internal/domain/build"
	"github.com/oshokin/client-release/internal/logger"
)

type linuxPackager struct {
	cfg *config.Config
}

// Package archives the build directory, manifest included.
func (p *linuxPackager) Package(ctx context.Context) (build.InstallerArtifact, error) {
	dest := p.cfg.InstallerPath()

	logger.InfoKV(ctx, "Archiving installer", "from", p.cfg.BuildRoot(), "to", dest)

	if err := archive.CreateTarGz(p.cfg.BuildRoot(), dest); err != nil {
		return build.InstallerArtifact{}, err
	}

	return build.InstallerArtifact{Path: dest, Platform: build.PlatformLinux}, nil
}
