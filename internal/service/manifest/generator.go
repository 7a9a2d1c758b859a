package manifest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/oshokin/client-release/internal/config"
	"github.com/oshokin/client-release/internal/domain/build"
	"github.com/oshokin/client-release/internal/fsutil"
	"github.com/oshokin/client-release/internal/logger"
	manifestrepo "github.com/oshokin/client-release/internal/repository/manifest"
)

// Generator runs the manifest stage.
type Generator struct {
	cfg  *config.Config
	repo manifestrepo.Repository
	// updaterPath is the fetched updater binary.
	updaterPath string
}

// New creates a Generator that installs the updater found at updaterPath.
func New(cfg *config.Config, repo manifestrepo.Repository, updaterPath string) *Generator {
	return &Generator{
		cfg:         cfg,
		repo:        repo,
		updaterPath: updaterPath,
	}
}

// Generate renames the bundler output to the build's data directory, copies
// the updater next to it and writes the manifest.
func (g *Generator) Generate(ctx context.Context, buildID int64) (*build.Manifest, error) {
	src := g.cfg.RawPackageDir()
	dataDir := filepath.Join(g.cfg.BuildRoot(), build.DataDirName(g.cfg.PackageID, buildID))

	logger.InfoKV(ctx, "Renaming package directory", "from", src, "to", dataDir)

	if err := os.Rename(src, dataDir); err != nil {
		return nil, fmt.Errorf("%w: rename %s: %w", build.ErrFileSystem, src, err)
	}

	files, err := fsutil.ListFiles(dataDir)
	if err != nil {
		return nil, fmt.Errorf("%w: list %s: %w", build.ErrFileSystem, dataDir, err)
	}

	updaterDest := filepath.Join(g.cfg.BuildRoot(), g.cfg.Platform.UpdaterFilename())

	logger.InfoKV(ctx, "Installing updater", "from", g.updaterPath, "to", updaterDest)

	// The replaced updater must not stay inside the build root, which is packaged as is.
	oldUpdater := filepath.Join(g.cfg.TrashDir(), g.cfg.Platform.UpdaterFilename()+".old")

	if err = fsutil.CopyExecutable(g.updaterPath, updaterDest, oldUpdater); err != nil {
		return nil, err
	}

	manifest := g.newManifest(filepath.Base(dataDir), buildID, files)

	if err = g.repo.Save(ctx, manifest); err != nil {
		return nil, err
	}

	logger.InfoKV(ctx, "Manifest written", "uid", manifest.GameInfo.UID, "files", len(files))

	return manifest, nil
}

func (g *Generator) newManifest(dir string, buildID int64, files []string) *build.Manifest {
	if files == nil {
		files = []string{}
	}

	return &build.Manifest{
		Version: build.ManifestSchemaVersion,
		AutoRun: true,
		GameInfo: build.GameInfo{
			Dir:          dir,
			UID:          build.GameUID(g.cfg.PackageID, buildID),
			ArchiveFiles: files,
			PlatformURL:  g.cfg.PlatformURL(),
			DeclaredImplementations: build.DeclaredImplementations{
				Presence:          true,
				BadUpdateRecovery: true,
			},
		},
		LaunchOptions: build.LaunchOptions{
			Executable: g.cfg.Platform.LaunchExecutable(),
		},
		OS:             g.cfg.Platform.OS(),
		Arch:           g.cfg.Arch,
		IsFirstInstall: false,
	}
}
