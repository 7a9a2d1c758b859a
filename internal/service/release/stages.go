package release

import (
	"context"
	"errors"
	"slices"

	"github.com/oshokin/client-release/internal/domain/build"
	"github.com/oshokin/client-release/internal/logger"
	"github.com/oshokin/client-release/internal/service/fetcher"
)

// Stage names in the order they can appear.
const (
	StagePreflight        = "preflight"
	StageDependencies     = "dependencies"
	StageBundle           = "bundle"
	StageUnpack           = "unpack"
	StageArchivePackage   = "archive-package"
	StageFetchPushClient  = "fetch-push-client"
	StagePublishPackage   = "publish-package"
	StageFetchUpdater     = "fetch-updater"
	StageBuildID          = "build-id"
	StageManifest         = "manifest"
	StageInstaller        = "installer"
	StagePublishInstaller = "publish-installer"
)

var errRegistrarRequired = errors.New("publishing requires a registrar and a publisher")

// The collaborators each stage delegates to.
type (
	dependencyStager interface {
		InstallDependencies(ctx context.Context) error
		Bundle(ctx context.Context) error
	}

	packageUnpacker interface {
		Unpack(ctx context.Context) error
	}

	packageArchiver interface {
		Archive(ctx context.Context) (build.PackageArtifact, error)
	}

	binaryFetcher interface {
		Fetch(ctx context.Context, bin fetcher.Binary) (string, error)
	}

	buildRegistrar interface {
		ResolveBuildID(ctx context.Context, artifact build.PackageArtifact) (int64, error)
	}

	manifestGenerator interface {
		Generate(ctx context.Context, buildID int64) (*build.Manifest, error)
	}

	installerPackager interface {
		Package(ctx context.Context) (build.InstallerArtifact, error)
	}

	artifactPublisher interface {
		PublishPackage(ctx context.Context, artifact build.PackageArtifact) error
		PublishInstaller(ctx context.Context, artifact build.InstallerArtifact) error
	}
)

// Services wires the stage collaborators. Registrar and Publisher are only
// used when SkipPublish is false.
type Services struct {
	Preflight func(ctx context.Context) error

	Stager    dependencyStager
	Unpacker  packageUnpacker
	Archiver  packageArchiver
	Fetcher   binaryFetcher
	Registrar buildRegistrar
	Manifest  manifestGenerator
	Installer installerPackager
	Publisher artifactPublisher

	Updater    fetcher.Binary
	PushClient fetcher.Binary

	SkipPublish     bool
	FallbackBuildID int64
}

// runState carries values between stages. Only the stage that produces a
// value writes it.
type runState struct {
	artifact  build.PackageArtifact
	buildID   int64
	manifest  *build.Manifest
	installer build.InstallerArtifact
}

// Stages assembles the ordered stage list: a shared base plus the publish
// insertions when publishing.
func Stages(svc *Services) ([]Stage, error) {
	if !svc.SkipPublish && (svc.Registrar == nil || svc.Publisher == nil) {
		return nil, errRegistrarRequired
	}

	state := new(runState)

	stages := []Stage{
		{Name: StagePreflight, Run: svc.preflight},
		{Name: StageDependencies, Run: func(ctx context.Context) error {
			return svc.Stager.InstallDependencies(ctx)
		}},
		{Name: StageBundle, Run: func(ctx context.Context) error {
			return svc.Stager.Bundle(ctx)
		}},
		{Name: StageUnpack, Run: func(ctx context.Context) error {
			return svc.Unpacker.Unpack(ctx)
		}},
		{Name: StageArchivePackage, Run: func(ctx context.Context) error {
			artifact, err := svc.Archiver.Archive(ctx)
			state.artifact = artifact

			return err
		}},
		{Name: StageFetchUpdater, Run: func(ctx context.Context) error {
			_, err := svc.Fetcher.Fetch(ctx, svc.Updater)

			return err
		}},
		{Name: StageBuildID, Run: func(ctx context.Context) error {
			return svc.resolveBuildID(ctx, state)
		}},
		{Name: StageManifest, Run: func(ctx context.Context) error {
			manifest, err := svc.Manifest.Generate(ctx, state.buildID)
			state.manifest = manifest

			return err
		}},
		{Name: StageInstaller, Run: func(ctx context.Context) error {
			artifact, err := svc.Installer.Package(ctx)
			state.installer = artifact

			return err
		}},
	}

	if svc.SkipPublish {
		return stages, nil
	}

	at := slices.IndexFunc(stages, func(s Stage) bool { return s.Name == StageArchivePackage }) + 1
	stages = slices.Insert(stages, at,
		Stage{Name: StageFetchPushClient, Run: func(ctx context.Context) error {
			_, err := svc.Fetcher.Fetch(ctx, svc.PushClient)

			return err
		}},
		Stage{Name: StagePublishPackage, Run: func(ctx context.Context) error {
			return svc.Publisher.PublishPackage(ctx, state.artifact)
		}},
	)

	stages = append(stages, Stage{Name: StagePublishInstaller, Run: func(ctx context.Context) error {
		return svc.Publisher.PublishInstaller(ctx, state.installer)
	}})

	return stages, nil
}

func (svc *Services) preflight(ctx context.Context) error {
	if svc.Preflight == nil {
		return nil
	}

	return svc.Preflight(ctx)
}

func (svc *Services) resolveBuildID(ctx context.Context, state *runState) error {
	if svc.SkipPublish {
		state.buildID = svc.FallbackBuildID

		logger.InfoKV(ctx, "Publishing is skipped, using the fallback build id", "build_id", state.buildID)

		return nil
	}

	buildID, err := svc.Registrar.ResolveBuildID(ctx, state.artifact)
	if err != nil {
		return err
	}

	state.buildID = buildID

	return nil
}
