package installer

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/oshokin/client-release/internal/config"
	"github.com/oshokin/client-release/internal/domain/build"
	"github.com/oshokin/client-release/internal/logger"
	"github.com/oshokin/client-release/internal/process"
	manifestrepo "github.com/oshokin/client-release/internal/repository/manifest"
)

// ScriptFilename is the installer compiler script inside the assets directory.
const ScriptFilename = "installer.iss"

var errCertPasswordRequired = errors.New(config.EnvCertPassword + " must be set for production installers")

type windowsPackager struct {
	cfg       *config.Config
	runner    process.Runner
	manifests manifestrepo.Repository
}

// Package compiles and signs the setup executable. The game uid is read back
// from the manifest so the installer registers the same build.
func (p *windowsPackager) Package(ctx context.Context) (build.InstallerArtifact, error) {
	manifest, err := p.manifests.Load(ctx)
	if err != nil {
		return build.InstallerArtifact{}, fmt.Errorf("load manifest: %w", err)
	}

	certFile, certPassword, err := p.certificate()
	if err != nil {
		return build.InstallerArtifact{}, err
	}

	cmd := process.Command{
		Name: p.cfg.Tools.Installer,
		Args: []string{
			"/DSourceDir=" + p.cfg.BuildRoot(),
			"/DOutputDir=" + p.cfg.ClientBuildDir,
			"/DOutputBaseFilename=" + trimExt(p.cfg.Platform.InstallerFilename()),
			"/DAppVersion=" + p.cfg.Project.Version,
			"/DGameUID=" + manifest.GameInfo.UID,
			"/DCertFile=" + certFile,
			"/DCertPassword=" + certPassword,
			filepath.Join(p.cfg.AssetsDir, ScriptFilename),
		},
		Secrets: []string{certPassword},
	}

	logger.InfoKV(ctx, "Compiling setup executable", "uid", manifest.GameInfo.UID, "cert", certFile)

	if err = p.runner.Run(ctx, cmd); err != nil {
		return build.InstallerArtifact{}, err
	}

	return build.InstallerArtifact{Path: p.cfg.InstallerPath(), Platform: build.PlatformWindows}, nil
}

// certificate picks the signing certificate: the real one for production
// builds, the vendor test certificate otherwise.
func (p *windowsPackager) certificate() (string, string, error) {
	if !p.cfg.ProductionBuild {
		return filepath.Join(p.cfg.AssetsDir, "vendor", "cert.pfx"), p.cfg.TestCertPassword, nil
	}

	if p.cfg.Secrets.CertPassword == "" {
		return "", "", errCertPasswordRequired
	}

	return filepath.Join(p.cfg.AssetsDir, "certs", "cert.pfx"), p.cfg.Secrets.CertPassword, nil
}

func trimExt(name string) string {
	return name[:len(name)-len(filepath.Ext(name))]
}
