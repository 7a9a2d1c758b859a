package release

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/client-release/internal/config"
	"github.com/oshokin/client-release/internal/domain/build"
	manifestrepo "github.com/oshokin/client-release/internal/repository/manifest"
	"github.com/oshokin/client-release/internal/service/fetcher"
	"github.com/oshokin/client-release/internal/service/manifest"
)

// fakes records the calls of every collaborator.
type fakes struct {
	calls       []string
	buildID     int64
	registerErr error
	published   []string
}

func (f *fakes) InstallDependencies(context.Context) error {
	f.calls = append(f.calls, "dependencies")

	return nil
}

func (f *fakes) Bundle(context.Context) error {
	f.calls = append(f.calls, "bundle")

	return nil
}

func (f *fakes) Unpack(context.Context) error {
	f.calls = append(f.calls, "unpack")

	return nil
}

func (f *fakes) Archive(context.Context) (build.PackageArtifact, error) {
	f.calls = append(f.calls, "archive")

	return build.PackageArtifact{Path: "/client/win64-package.tar.gz", PlatformArch: "win64"}, nil
}

func (f *fakes) Fetch(_ context.Context, bin fetcher.Binary) (string, error) {
	f.calls = append(f.calls, "fetch "+bin.Name)

	return "/client/" + bin.Name, nil
}

func (f *fakes) ResolveBuildID(context.Context, build.PackageArtifact) (int64, error) {
	f.calls = append(f.calls, "register")

	return f.buildID, f.registerErr
}

func (f *fakes) Generate(_ context.Context, buildID int64) (*build.Manifest, error) {
	f.calls = append(f.calls, "manifest")
	f.buildID = buildID

	return &build.Manifest{}, nil
}

func (f *fakes) Package(context.Context) (build.InstallerArtifact, error) {
	f.calls = append(f.calls, "installer")

	return build.InstallerArtifact{Path: "/client/GamingChannelClientSetup.exe"}, nil
}

func (f *fakes) PublishPackage(_ context.Context, artifact build.PackageArtifact) error {
	f.published = append(f.published, artifact.Path)

	return nil
}

func (f *fakes) PublishInstaller(_ context.Context, artifact build.InstallerArtifact) error {
	f.published = append(f.published, artifact.Path)

	return nil
}

func fakeServices(f *fakes, skipPublish bool) *Services {
	svc := &Services{
		Stager:          f,
		Unpacker:        f,
		Archiver:        f,
		Fetcher:         f,
		Manifest:        f,
		Installer:       f,
		Updater:         fetcher.Binary{Name: "joltron"},
		PushClient:      fetcher.Binary{Name: "gcpush"},
		SkipPublish:     skipPublish,
		FallbackBuildID: config.DefaultFallbackBuildID,
	}

	if !skipPublish {
		svc.Registrar = f
		svc.Publisher = f
	}

	return svc
}

func stageNames(t *testing.T, svc *Services) []string {
	t.Helper()

	stages, err := Stages(svc)
	require.NoError(t, err)

	return NewPipeline(stages...).Names()
}

// TestStages_Names checks both stage lists.
func TestStages_Names(t *testing.T) {
	t.Parallel()

	require.Equal(t, []string{
		"preflight", "dependencies", "bundle", "unpack", "archive-package",
		"fetch-updater", "build-id", "manifest", "installer",
	}, stageNames(t, fakeServices(new(fakes), true)))

	require.Equal(t, []string{
		"preflight", "dependencies", "bundle", "unpack", "archive-package",
		"fetch-push-client", "publish-package",
		"fetch-updater", "build-id", "manifest", "installer", "publish-installer",
	}, stageNames(t, fakeServices(new(fakes), false)))
}

// TestStages_RequirePublishers rejects publish mode without a registrar.
func TestStages_RequirePublishers(t *testing.T) {
	t.Parallel()

	svc := fakeServices(new(fakes), false)
	svc.Registrar = nil

	_, err := Stages(svc)
	require.ErrorIs(t, err, errRegistrarRequired)
}

// TestStages_SkipPublish uses the fallback build id and never publishes.
func TestStages_SkipPublish(t *testing.T) {
	t.Parallel()

	f := new(fakes)

	stages, err := Stages(fakeServices(f, true))
	require.NoError(t, err)

	_, err = NewPipeline(stages...).Run(context.Background())
	require.NoError(t, err)

	require.Equal(t, int64(739828), f.buildID)
	require.NotContains(t, f.calls, "register")
	require.NotContains(t, f.calls, "fetch gcpush")
	require.Empty(t, f.published)
}

// TestStages_Publish resolves the build id after publishing the package.
func TestStages_Publish(t *testing.T) {
	t.Parallel()

	f := &fakes{buildID: 91}

	stages, err := Stages(fakeServices(f, false))
	require.NoError(t, err)

	_, err = NewPipeline(stages...).Run(context.Background())
	require.NoError(t, err)

	require.Equal(t, []string{
		"dependencies", "bundle", "unpack", "archive", "fetch gcpush",
		"fetch joltron", "register", "manifest", "installer",
	}, f.calls)
	require.Equal(t, int64(91), f.buildID)
	require.Equal(t, []string{"/client/win64-package.tar.gz", "/client/GamingChannelClientSetup.exe"}, f.published)
}

// TestStages_RegistrarFailure halts before the manifest is written.
func TestStages_RegistrarFailure(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{ProjectDir: t.TempDir(), Platform: build.PlatformWindows, SkipPublish: true}
	require.NoError(t, config.Validate(cfg))

	repo := manifestrepo.NewFileRepository(cfg.ManifestPath())

	f := &fakes{registerErr: build.ErrBuildNotFound}
	svc := fakeServices(f, false)
	svc.Manifest = manifest.New(cfg, repo, "/nonexistent/joltron")

	stages, err := Stages(svc)
	require.NoError(t, err)

	report, err := NewPipeline(stages...).Run(context.Background())
	require.ErrorIs(t, err, build.ErrBuildNotFound)

	failed, ok := report.Failed()
	require.True(t, ok)
	require.Equal(t, StageBuildID, failed.Name)

	for _, result := range report.Results[len(report.Results)-3:] {
		require.Equal(t, StatusSkipped, result.Status, result.Name)
	}

	_, err = repo.Load(context.Background())
	require.ErrorIs(t, err, manifestrepo.ErrNotFound)
	require.NotContains(t, f.calls, "installer")
	require.Len(t, f.published, 1)
}
