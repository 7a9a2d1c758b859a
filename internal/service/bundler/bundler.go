package bundler

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/oshokin/client-release/internal/config"
	"github.com/oshokin/client-release/internal/domain/build"
	"github.com/oshokin/client-release/internal/fsutil"
	"github.com/oshokin/client-release/internal/logger"
	"github.com/oshokin/client-release/internal/process"
)

const (
	// PostinstallPackage ships native helpers through its postinstall script.
	PostinstallPackage = "client-voodoo"

	flavorRelease = "normal"
	flavorSDK     = "sdk"
)

// Stager runs the dependency and bundle stages.
type Stager struct {
	cfg    *config.Config
	runner process.Runner
}

// New creates a Stager for cfg.
func New(cfg *config.Config, runner process.Runner) *Stager {
	return &Stager{
		cfg:    cfg,
		runner: runner,
	}
}

// InstallDependencies installs production dependencies into the app tree,
// runs the native helpers' postinstall and, for non-production builds, drops
// the configured dev dependencies in verbatim.
func (s *Stager) InstallDependencies(ctx context.Context) error {
	for _, cmd := range s.DependencyCommands() {
		logger.InfoKV(ctx, "Installing dependencies", "command", cmd.String())

		if err := s.runner.Run(ctx, cmd); err != nil {
			return err
		}
	}

	if s.cfg.ProductionBuild {
		return nil
	}

	for _, dep := range s.cfg.DevDependenciesAsIs {
		src := filepath.Join(s.cfg.ProjectDir, "node_modules", dep)
		dst := filepath.Join(s.cfg.AppDir, "node_modules", dep)

		logger.InfoKV(ctx, "Copying development dependency as is", "dependency", dep, "from", src)

		if err := os.RemoveAll(dst); err != nil {
			return fmt.Errorf("%w: remove %s: %w", build.ErrFileSystem, dst, err)
		}

		if err := fsutil.CopyTree(src, dst); err != nil {
			return err
		}
	}

	return nil
}

// DependencyCommands lists the package manager invocations.
func (s *Stager) DependencyCommands() []process.Command {
	return []process.Command{
		{
			Name: s.cfg.Tools.Yarn,
			Args: []string{"--cwd", s.cfg.AppDir, "--production", "--ignore-scripts"},
		},
		{
			Name: s.cfg.Tools.Yarn,
			Args: []string{"--cwd", filepath.Join(s.cfg.AppDir, "node_modules", PostinstallPackage), "run", "postinstall"},
		},
	}
}

// Bundle wraps the app tree into the native runtime. The output lands in
// {client_build_dir}/build/{platformArch}.
func (s *Stager) Bundle(ctx context.Context) error {
	cmd := s.BundleCommand()

	logger.InfoKV(ctx, "Bundling application",
		"platform_arch", s.cfg.PlatformArch(),
		"runtime", s.cfg.BundlerRuntimeVersion,
		"flavor", s.Flavor())

	return s.runner.Run(ctx, cmd)
}

// Flavor is the runtime flavor: the release runtime only for real production
// packages, the developer runtime otherwise.
func (s *Stager) Flavor() string {
	if s.cfg.ProductionBuild && !s.cfg.UseTestPackage {
		return flavorRelease
	}

	return flavorSDK
}

// BundleCommand builds the bundler argv.
func (s *Stager) BundleCommand() process.Command {
	icons := filepath.Join(s.cfg.AssetsDir, "icons")

	return process.Command{
		Name: s.cfg.Tools.Bundler,
		Args: []string{
			"--platforms", s.cfg.PlatformArch(),
			"--version", s.cfg.BundlerRuntimeVersion,
			"--flavor", s.Flavor(),
			"--buildDir", s.cfg.ClientBuildDir,
			"--cacheDir", s.cfg.CacheDir,
			"--buildType", "build",
			"--appName", s.cfg.Platform.AppName(),
			"--appVersion", s.cfg.Project.Version,
			"--macIcns", filepath.Join(icons, "mac.icns"),
			"--winIco", filepath.Join(icons, "winico.ico"),
			"--macZip=false",
			"--mergeApp=false",
			filepath.Join(s.cfg.AppDir, "**", "*"),
		},
	}
}
