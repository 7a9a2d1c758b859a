package installer

import (
	"bytes"
	"context"
	"encoding/json"
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
	// AppVersionPlaceholder is replaced with the release version in Info.plist.
	AppVersionPlaceholder = "{{APP_VERSION}}"

	diskImageSpecFilename = "appdmg.json"
	diskImageIconSize     = 80
)

// diskImageSpec is the disk image builder's JSON layout description.
type diskImageSpec struct {
	Title      string              `json:"title"`
	Icon       string              `json:"icon"`
	Background string              `json:"background"`
	IconSize   int                 `json:"icon-size"`
	Contents   []diskImageContents `json:"contents"`
}

type diskImageContents struct {
	X    int    `json:"x"`
	Y    int    `json:"y"`
	Type string `json:"type"`
	Path string `json:"path"`
}

type macPackager struct {
	cfg    *config.Config
	runner process.Runner
}

// Package wraps the build directory in the app template and builds a dmg
// with the app next to an /Applications link.
func (p *macPackager) Package(ctx context.Context) (build.InstallerArtifact, error) {
	appName := p.cfg.Platform.AppName() + ".app"
	template := filepath.Join(p.cfg.AssetsDir, appName)
	app := filepath.Join(p.cfg.ClientBuildDir, appName)

	logger.InfoKV(ctx, "Preparing app bundle", "template", template, "app", app)

	if err := os.RemoveAll(app); err != nil {
		return build.InstallerArtifact{}, fmt.Errorf("%w: remove %s: %w", build.ErrFileSystem, app, err)
	}

	if err := fsutil.CopyTree(template, app); err != nil {
		return build.InstallerArtifact{}, err
	}

	// Hidden files such as .manifest are part of the payload.
	if err := fsutil.CopyTree(p.cfg.BuildRoot(), filepath.Join(app, "Contents", "Resources", "app")); err != nil {
		return build.InstallerArtifact{}, err
	}

	if err := replaceInFile(filepath.Join(app, "Contents", "Info.plist"), AppVersionPlaceholder, p.cfg.Project.Version); err != nil {
		return build.InstallerArtifact{}, err
	}

	specPath, err := p.writeDiskImageSpec(app)
	if err != nil {
		return build.InstallerArtifact{}, err
	}

	dest := p.cfg.InstallerPath()

	// The disk image builder refuses to overwrite.
	if err = os.RemoveAll(dest); err != nil {
		return build.InstallerArtifact{}, fmt.Errorf("%w: remove %s: %w", build.ErrFileSystem, dest, err)
	}

	logger.InfoKV(ctx, "Building disk image", "path", dest)

	cmd := process.Command{
		Name: p.cfg.Tools.DiskImage,
		Args: []string{specPath, dest},
		Dir:  p.cfg.ProjectDir,
	}

	if err = p.runner.Run(ctx, cmd); err != nil {
		return build.InstallerArtifact{}, err
	}

	return build.InstallerArtifact{Path: dest, Platform: build.PlatformMac}, nil
}

func (p *macPackager) writeDiskImageSpec(app string) (string, error) {
	icons := filepath.Join(p.cfg.AssetsDir, "icons")

	spec := diskImageSpec{
		Title:      p.cfg.Platform.AppName(),
		Icon:       filepath.Join(icons, "mac.icns"),
		Background: filepath.Join(icons, "dmg-background.png"),
		IconSize:   diskImageIconSize,
		Contents: []diskImageContents{
			{X: 195, Y: 370, Type: "file", Path: app},
			{X: 429, Y: 370, Type: "link", Path: "/Applications"},
		},
	}

	data, err := json.MarshalIndent(spec, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode disk image spec: %w", err)
	}

	path := filepath.Join(p.cfg.ClientBuildDir, diskImageSpecFilename)
	if err = os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("%w: write %s: %w", build.ErrFileSystem, path, err)
	}

	return path, nil
}

func replaceInFile(path, old, replacement string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: stat %s: %w", build.ErrFileSystem, path, err)
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("%w: read %s: %w", build.ErrFileSystem, path, err)
	}

	contents = bytes.ReplaceAll(contents, []byte(old), []byte(replacement))

	if err = os.WriteFile(path, contents, info.Mode().Perm()); err != nil {
		return fmt.Errorf("%w: write %s: %w", build.ErrFileSystem, path, err)
	}

	return nil
}
