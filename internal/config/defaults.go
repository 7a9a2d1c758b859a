package config

import "path/filepath"

const (
	// DefaultArch is the architecture used when none is configured.
	DefaultArch = "64"
	// DefaultFallbackBuildID stands in for the registrar when publishing is skipped.
	DefaultFallbackBuildID int64 = 739828
	// DefaultPushClientVersion pins the push client release.
	DefaultPushClientVersion = "v0.4.0"
	// DefaultBundlerRuntimeVersion pins the native runtime version.
	DefaultBundlerRuntimeVersion = "0.35.5"
	// DefaultReleaseBaseURL hosts the tool release downloads.
	DefaultReleaseBaseURL = "https://github.com/gamingchannel"
	// DefaultTestCertPassword unlocks the vendor test certificate.
	DefaultTestCertPassword = "GJ123456"

	developmentHost = "http://development.gamingchannel.com"
	productionHost  = "https://gamingchannel.com"
)

// packageIDs are the distribution ids of one environment.
type packageIDs struct {
	game          int64
	pkg           int64
	installer     int64
	testPkg       int64
	testInstaller int64
}

//nolint:gochecknoglobals // Fixed service-side ids.
var idsByEnvironment = map[string]packageIDs{
	EnvDevelopment: {game: 1000, pkg: 1001, installer: 1000, testPkg: 1004, testInstaller: 1003},
	EnvProduction:  {game: 362412, pkg: 376715, installer: 376713, testPkg: 428842, testInstaller: 428840},
}

// applyDefaults fills every unset field. Environment must already be valid.
func applyDefaults(cfg *Config) {
	ids := idsByEnvironment[cfg.Environment]

	if cfg.GameID == 0 {
		cfg.GameID = ids.game
	}

	if cfg.PackageID == 0 {
		cfg.PackageID = ids.pkg
		if cfg.UseTestPackage {
			cfg.PackageID = ids.testPkg
		}
	}

	if cfg.InstallerPackageID == 0 {
		cfg.InstallerPackageID = ids.installer
		if cfg.UseTestPackage {
			cfg.InstallerPackageID = ids.testInstaller
		}
	}

	if cfg.FallbackBuildID == 0 {
		cfg.FallbackBuildID = DefaultFallbackBuildID
	}

	if cfg.APIHost == "" {
		cfg.APIHost = productionHost
		if cfg.IsDevelopment() {
			cfg.APIHost = developmentHost
		}
	}

	setDefault(&cfg.ReleaseBaseURL, DefaultReleaseBaseURL)
	setDefault(&cfg.PushClientVersion, DefaultPushClientVersion)
	setDefault(&cfg.BundlerRuntimeVersion, DefaultBundlerRuntimeVersion)
	setDefault(&cfg.TestCertPassword, DefaultTestCertPassword)

	setDefault(&cfg.Tools.PushClient, "gcpush")
	setDefault(&cfg.Tools.Updater, "joltron")
	setDefault(&cfg.Tools.UpdaterBinary, "coltron")
	setDefault(&cfg.Tools.Yarn, "yarn")
	setDefault(&cfg.Tools.Bundler, "nwbuild")
	setDefault(&cfg.Tools.DiskImage, "appdmg")
	setDefault(&cfg.Tools.Installer, "iscc")

	if cfg.DevDependenciesAsIs == nil {
		cfg.DevDependenciesAsIs = []string{"client-voodoo"}
	}

	setDefault(&cfg.ProjectDir, ".")
	setDefault(&cfg.AppDir, filepath.Join(cfg.ProjectDir, "build", "app"))
	setDefault(&cfg.ClientBuildDir, filepath.Join(cfg.ProjectDir, "build", "client"))
	setDefault(&cfg.CacheDir, filepath.Join(cfg.ProjectDir, "build", "client-cache"))
	setDefault(&cfg.AssetsDir, filepath.Join(cfg.ProjectDir, "packaging", "client"))
}

func setDefault(field *string, value string) {
	if *field == "" {
		*field = value
	}
}
