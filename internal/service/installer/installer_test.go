package installer

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/client-release/internal/config"
	"github.com/oshokin/client-release/internal/domain/build"
	"github.com/oshokin/client-release/internal/process/processtest"
	manifestrepo "github.com/oshokin/client-release/internal/repository/manifest"
)

func testConfig(t *testing.T, platform build.Platform) *config.Config {
	t.Helper()

	cfg := &config.Config{
		ProjectDir:  t.TempDir(),
		Platform:    platform,
		SkipPublish: true,
		Project:     config.Project{Version: "1.2.3", UpdaterVersion: "v2.0.1"},
	}
	require.NoError(t, config.Validate(cfg))

	// Updater layout as left by the manifest stage.
	dataDir := filepath.Join(cfg.BuildRoot(), build.DataDirName(cfg.PackageID, 7))
	require.NoError(t, os.MkdirAll(dataDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "client"), []byte("client"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(cfg.BuildRoot(), platform.UpdaterFilename()), []byte("updater"), 0o600))

	repo := manifestrepo.NewFileRepository(cfg.ManifestPath())
	require.NoError(t, repo.Save(context.Background(), &build.Manifest{
		Version:  build.ManifestSchemaVersion,
		GameInfo: build.GameInfo{UID: build.GameUID(cfg.PackageID, 7)},
	}))

	return cfg
}

// TestPackage_Linux archives the build directory with the manifest.
func TestPackage_Linux(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t, build.PlatformLinux)

	artifact, err := New(cfg, nil, nil).Package(context.Background())
	require.NoError(t, err)
	require.Equal(t, filepath.Join(cfg.ClientBuildDir, "GamingChannelClient.tar.gz"), artifact.Path)

	f, err := os.Open(artifact.Path)
	require.NoError(t, err)

	defer func() {
		require.NoError(t, f.Close())
	}()

	gz, err := gzip.NewReader(f)
	require.NoError(t, err)

	var names []string

	tr := tar.NewReader(gz)

	for {
		hdr, nextErr := tr.Next()
		if errors.Is(nextErr, io.EOF) {
			break
		}

		require.NoError(t, nextErr)

		names = append(names, hdr.Name)
	}

	require.Contains(t, names, "./.manifest")
	require.Contains(t, names, "./gaming-channel-client")
	require.Contains(t, names, "./data-376715-7/client")
}

// TestPackage_Windows passes the manifest uid and the test certificate.
func TestPackage_Windows(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t, build.PlatformWindows)
	rec := new(processtest.Recorder)

	artifact, err := New(cfg, rec, manifestrepo.NewFileRepository(cfg.ManifestPath())).Package(context.Background())
	require.NoError(t, err)
	require.Equal(t, "GamingChannelClientSetup.exe", filepath.Base(artifact.Path))

	cmds := rec.Commands()
	require.Len(t, cmds, 1)
	require.Equal(t, "iscc", cmds[0].Name)
	require.Contains(t, cmds[0].Args, "/DGameUID=376715-7")
	require.Contains(t, cmds[0].Args, "/DAppVersion=1.2.3")
	require.Contains(t, cmds[0].Args, "/DOutputBaseFilename=GamingChannelClientSetup")
	require.Contains(t, cmds[0].Args, "/DCertFile="+filepath.Join(cfg.AssetsDir, "vendor", "cert.pfx"))
	require.Contains(t, cmds[0].Args, "/DCertPassword=GJ123456")
}

// TestPackage_WindowsProduction requires the certificate password.
func TestPackage_WindowsProduction(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t, build.PlatformWindows)
	cfg.ProductionBuild = true

	rec := new(processtest.Recorder)
	packager := New(cfg, rec, manifestrepo.NewFileRepository(cfg.ManifestPath()))

	_, err := packager.Package(context.Background())
	require.ErrorIs(t, err, errCertPasswordRequired)
	require.Empty(t, rec.Commands())

	cfg.Secrets.CertPassword = "secret"

	_, err = packager.Package(context.Background())
	require.NoError(t, err)
	require.Contains(t, rec.Commands()[0].Args, "/DCertFile="+filepath.Join(cfg.AssetsDir, "certs", "cert.pfx"))
	require.Contains(t, rec.Commands()[0].Args, "/DCertPassword=secret")
	require.Equal(t, []string{"secret"}, rec.Commands()[0].Secrets)
	require.NotContains(t, rec.Commands()[0].String(), "secret")
}

// TestPackage_WindowsWithoutManifest fails before compiling.
func TestPackage_WindowsWithoutManifest(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t, build.PlatformWindows)
	require.NoError(t, os.Remove(cfg.ManifestPath()))

	rec := new(processtest.Recorder)

	_, err := New(cfg, rec, manifestrepo.NewFileRepository(cfg.ManifestPath())).Package(context.Background())
	require.ErrorIs(t, err, manifestrepo.ErrNotFound)
	require.Empty(t, rec.Commands())
}

// TestPackage_Mac fills the app template and describes the disk image.
func TestPackage_Mac(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t, build.PlatformMac)

	template := filepath.Join(cfg.AssetsDir, "Gaming Channel Client.app", "Contents")
	require.NoError(t, os.MkdirAll(template, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(template, "Info.plist"),
		[]byte("<string>{{APP_VERSION}}</string><string>{{APP_VERSION}}</string>"), 0o644))

	rec := new(processtest.Recorder)

	artifact, err := New(cfg, rec, nil).Package(context.Background())
	require.NoError(t, err)
	require.Equal(t, filepath.Join(cfg.ClientBuildDir, "GamingChannelClient.dmg"), artifact.Path)

	app := filepath.Join(cfg.ClientBuildDir, "Gaming Channel Client.app")

	plist, err := os.ReadFile(filepath.Join(app, "Contents", "Info.plist"))
	require.NoError(t, err)
	require.Equal(t, "<string>1.2.3</string><string>1.2.3</string>", string(plist))

	resources := filepath.Join(app, "Contents", "Resources", "app")
	require.FileExists(t, filepath.Join(resources, ".manifest"))
	require.FileExists(t, filepath.Join(resources, "gaming-channel-client"))

	cmds := rec.Commands()
	require.Len(t, cmds, 1)
	require.Equal(t, "appdmg", cmds[0].Name)
	require.Len(t, cmds[0].Args, 2)
	require.Equal(t, artifact.Path, cmds[0].Args[1])

	data, err := os.ReadFile(cmds[0].Args[0])
	require.NoError(t, err)

	var spec diskImageSpec
	require.NoError(t, json.Unmarshal(data, &spec))
	require.Equal(t, 80, spec.IconSize)
	require.Equal(t, []diskImageContents{
		{X: 195, Y: 370, Type: "file", Path: app},
		{X: 429, Y: 370, Type: "link", Path: "/Applications"},
	}, spec.Contents)
}

// TestPackage_MacMissingTemplate fails with a filesystem error.
func TestPackage_MacMissingTemplate(t *testing.T) {
	t.Parallel()

	_, err := New(testConfig(t, build.PlatformMac), new(processtest.Recorder), nil).Package(context.Background())
	require.ErrorIs(t, err, build.ErrFileSystem)
}
