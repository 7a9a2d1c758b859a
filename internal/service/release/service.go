package release

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	ps "github.com/mitchellh/go-ps"

	"github.com/oshokin/client-release/internal/api/distribution"
	"github.com/oshokin/client-release/internal/config"
	"github.com/oshokin/client-release/internal/domain/build"
	"github.com/oshokin/client-release/internal/fsutil"
	"github.com/oshokin/client-release/internal/logger"
	"github.com/oshokin/client-release/internal/process"
	manifestrepo "github.com/oshokin/client-release/internal/repository/manifest"
	"github.com/oshokin/client-release/internal/service/archiver"
	"github.com/oshokin/client-release/internal/service/bundler"
	"github.com/oshokin/client-release/internal/service/common"
	"github.com/oshokin/client-release/internal/service/fetcher"
	"github.com/oshokin/client-release/internal/service/installer"
	"github.com/oshokin/client-release/internal/service/manifest"
	"github.com/oshokin/client-release/internal/service/publisher"
	"github.com/oshokin/client-release/internal/service/registrar"
	"github.com/oshokin/client-release/internal/service/unpacker"
)

// pushClientRepo is the repository the push client is released from.
const pushClientRepo = "cli"

var errBuildDirLocked = errors.New("another release is running in this build directory")

// Options contains inputs for the release entry point. Flag values override
// the configuration file; nil pointers and empty strings keep it.
type Options struct {
	// ConfigPath is the YAML configuration; empty means client-release.yaml if present.
	ConfigPath string

	Platform       string
	Arch           string
	Environment    string
	Production     *bool
	SkipPublish    *bool
	UseTestPackage *bool

	// Getenv reads secrets; defaults to os.Getenv.
	Getenv func(string) string
	// Runner executes external tools; defaults to process.ExecRunner.
	Runner process.Runner
	// HTTPClient is used for downloads and API calls; defaults to http.DefaultClient.
	HTTPClient *http.Client
	// Summary receives the stage table; defaults to os.Stdout.
	Summary io.Writer
}

// Run executes a release.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "client-release")

	cfg, err := loadConfig(opts)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	ctx = logger.WithFields(ctx,
		"run_id", uuid.NewString(),
		"platform", cfg.PlatformArch(),
		"environment", cfg.Environment)

	if actor, actorErr := common.DetectActor(); actorErr == nil {
		logger.InfoKV(ctx, "Release started", "host", actor.Hostname, "user", actor.Username, "version", cfg.Project.Version)
	} else {
		logger.InfoKV(ctx, "Release started", "version", cfg.Project.Version)
	}

	unlock, err := lockBuildDir(cfg)
	if err != nil {
		return err
	}

	defer unlock(ctx)

	svc, err := newServices(cfg, opts)
	if err != nil {
		return err
	}

	stages, err := Stages(svc)
	if err != nil {
		return err
	}

	pipeline := NewPipeline(stages...)

	report, err := pipeline.Run(ctx)

	summary := opts.Summary
	if summary == nil {
		summary = os.Stdout
	}

	report.Render(summary)

	if err != nil {
		return err
	}

	logger.Info(ctx, "Release completed successfully")

	return nil
}

// loadConfig reads the file, applies flag overrides and the environment,
// validates the result and attaches the project descriptor.
func loadConfig(opts *Options) (*config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	applyOverrides(cfg, opts)

	getenv := opts.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}

	config.ApplyEnv(cfg, getenv)

	if err = config.Validate(cfg); err != nil {
		return nil, err
	}

	if cfg.Project, err = config.LoadProject(cfg.ProjectDir); err != nil {
		return nil, err
	}

	// The updater tag has to parse before anything is built.
	if _, err = cfg.Project.UpdaterVersionInfo(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func applyOverrides(cfg *config.Config, opts *Options) {
	if opts.Platform != "" {
		cfg.Platform = build.Platform(opts.Platform)
	}

	if opts.Arch != "" {
		cfg.Arch = opts.Arch
	}

	if opts.Environment != "" {
		cfg.Environment = opts.Environment
	}

	if opts.Production != nil {
		cfg.ProductionBuild = *opts.Production
	}

	if opts.SkipPublish != nil {
		cfg.SkipPublish = *opts.SkipPublish
	}

	if opts.UseTestPackage != nil {
		cfg.UseTestPackage = *opts.UseTestPackage
	}
}

// lockBuildDir takes the exclusive build directory lock.
func lockBuildDir(cfg *config.Config) (func(ctx context.Context), error) {
	if err := os.MkdirAll(cfg.ClientBuildDir, fsutil.DirMode); err != nil {
		return nil, fmt.Errorf("%w: create %s: %w", build.ErrFileSystem, cfg.ClientBuildDir, err)
	}

	lock := flock.New(cfg.LockPath())

	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}

	if !locked {
		return nil, fmt.Errorf("%w: %s", errBuildDirLocked, cfg.LockPath())
	}

	return func(ctx context.Context) {
		if unlockErr := lock.Unlock(); unlockErr != nil {
			logger.WarnKV(ctx, "Failed to release the build directory lock", "error", unlockErr)
		}
	}, nil
}

// newServices builds the stage collaborators for cfg.
func newServices(cfg *config.Config, opts *Options) (*Services, error) {
	runner := opts.Runner
	if runner == nil {
		runner = process.NewExecRunner()
	}

	if _, err := cfg.Project.UpdaterVersionInfo(); err != nil {
		return nil, err
	}

	fetch := fetcher.New(fetcher.Options{
		Platform:       cfg.Platform,
		Development:    cfg.IsDevelopment(),
		Workspace:      cfg.Secrets.Workspace,
		ReleaseBaseURL: cfg.ReleaseBaseURL,
		DestDir:        cfg.ClientBuildDir,
		HTTPClient:     opts.HTTPClient,
		ShowProgress:   logger.IsTerminal(),
	})

	updaterBin := fetcher.Binary{Repo: cfg.Tools.Updater, Name: cfg.Tools.UpdaterBinary, Tag: cfg.Project.ReleaseTag()}
	pushClientBin := fetcher.Binary{Repo: pushClientRepo, Name: cfg.Tools.PushClient, Tag: cfg.PushClientVersion}

	manifests := manifestrepo.NewFileRepository(cfg.ManifestPath())

	svc := &Services{
		Preflight: runningProcessCheck(ps.Processes,
			cfg.Platform.ExecutableName(cfg.Platform.AppName()),
			cfg.Platform.UpdaterFilename()),
		Stager:          bundler.New(cfg, runner),
		Unpacker:        unpacker.New(cfg, nil),
		Archiver:        archiver.New(cfg),
		Fetcher:         fetch,
		Manifest:        manifest.New(cfg, manifests, fetch.Destination(updaterBin)),
		Installer:       installer.New(cfg, runner, manifests),
		Updater:         updaterBin,
		PushClient:      pushClientBin,
		SkipPublish:     cfg.SkipPublish,
		FallbackBuildID: cfg.FallbackBuildID,
	}

	if cfg.SkipPublish {
		return svc, nil
	}

	client, err := distribution.NewClient(cfg.APIHost, cfg.Secrets.APIToken, distribution.WithHTTPClient(opts.HTTPClient))
	if err != nil {
		return nil, err
	}

	svc.Registrar = registrar.New(client, registrar.Options{
		GameID:    cfg.GameID,
		PackageID: cfg.PackageID,
		Version:   cfg.Project.Version,
	})

	svc.Publisher = publisher.New(runner, publisher.Options{
		PushClient:         fetch.Destination(pushClientBin),
		Token:              cfg.Secrets.APIToken,
		GameID:             cfg.GameID,
		PackageID:          cfg.PackageID,
		InstallerPackageID: cfg.InstallerPackageID,
		Version:            cfg.Project.Version,
	})

	return svc, nil
}
