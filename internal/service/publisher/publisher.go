// Package publisher uploads artifacts to the distribution service through
// the push client.
package publisher

import (
	"context"
	"strconv"

	"github.com/oshokin/client-release/internal/config"
	"github.com/oshokin/client-release/internal/domain/build"
	"github.com/oshokin/client-release/internal/logger"
	"github.com/oshokin/client-release/internal/process"
)

// Options configures a Publisher.
type Options struct {
	// PushClient is the path of the fetched push client.
	PushClient string
	// Token authenticates the push client; passed through its environment.
	Token string

	GameID             int64
	PackageID          int64
	InstallerPackageID int64

	// Version is the release version the artifacts are pushed under.
	Version string
}

// Target is one upload.
type Target struct {
	PackageID int64
	Path      string
}

// Publisher runs the publish stages.
type Publisher struct {
	runner process.Runner
	opts   Options
}

// New creates a Publisher.
func New(runner process.Runner, opts Options) *Publisher {
	return &Publisher{
		runner: runner,
		opts:   opts,
	}
}

// Publish pushes target.Path into target.PackageID.
func (p *Publisher) Publish(ctx context.Context, target Target) error {
	logger.InfoKV(ctx, "Publishing artifact",
		"path", target.Path,
		"package_id", target.PackageID,
		"version", p.opts.Version)

	return p.runner.Run(ctx, p.Command(target))
}

// PublishPackage pushes the package artifact into the client package.
func (p *Publisher) PublishPackage(ctx context.Context, artifact build.PackageArtifact) error {
	return p.Publish(ctx, Target{PackageID: p.opts.PackageID, Path: artifact.Path})
}

// PublishInstaller pushes the installer into the installer package.
func (p *Publisher) PublishInstaller(ctx context.Context, artifact build.InstallerArtifact) error {
	return p.Publish(ctx, Target{PackageID: p.opts.InstallerPackageID, Path: artifact.Path})
}

// Command builds the push client argv for target.
func (p *Publisher) Command(target Target) process.Command {
	cmd := process.Command{
		Name: p.opts.PushClient,
		Args: []string{
			"-g", strconv.FormatInt(p.opts.GameID, 10),
			"-p", strconv.FormatInt(target.PackageID, 10),
			"-r", p.opts.Version,
			target.Path,
		},
	}

	if p.opts.Token != "" {
		cmd.Env = []string{config.EnvAPIToken + "=" + p.opts.Token}
	}

	return cmd
}
