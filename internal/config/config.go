package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/oshokin/client-release/internal/domain/build"
)

// Config holds everything a release run needs. It is loaded once and not
// mutated after Validate.
type Config struct {
	// ProjectDir is the root of the client project (holds package.json and node_modules).
	ProjectDir string `yaml:"project_dir"`
	// AppDir is the prepared application tree handed to the native bundler.
	AppDir string `yaml:"app_dir"`
	// ClientBuildDir receives bundler output, artifacts and tools.
	ClientBuildDir string `yaml:"client_build_dir"`
	// CacheDir is the native bundler's runtime download cache.
	CacheDir string `yaml:"cache_dir"`
	// AssetsDir holds icons, certificates, the mac app template and the installer script.
	AssetsDir string `yaml:"assets_dir"`

	// Platform is the target operating system; defaults to the running one.
	Platform build.Platform `yaml:"platform"`
	// Arch is the target architecture, "32" or "64".
	Arch string `yaml:"arch"`
	// Environment selects hosts, ids and tool sources: development or production.
	Environment string `yaml:"environment"`
	// ProductionBuild selects the release runtime flavor and the real signing certificate.
	ProductionBuild bool `yaml:"production"`
	// SkipPublish builds installers without talking to the distribution service.
	SkipPublish bool `yaml:"skip_publish"`
	// UseTestPackage publishes to the test packages instead of the real ones.
	UseTestPackage bool `yaml:"use_test_package"`

	// GameID, PackageID and InstallerPackageID default per environment when zero.
	GameID             int64 `yaml:"game_id"`
	PackageID          int64 `yaml:"package_id"`
	InstallerPackageID int64 `yaml:"installer_package_id"`
	// FallbackBuildID is used instead of the registrar when publishing is skipped.
	FallbackBuildID int64 `yaml:"fallback_build_id"`

	// APIHost is the distribution service host, e.g. https://gamingchannel.com.
	APIHost string `yaml:"api_host"`
	// ReleaseBaseURL is where tool releases are downloaded from in production.
	ReleaseBaseURL string `yaml:"release_base_url"`
	// PushClientVersion pins the push client release tag.
	PushClientVersion string `yaml:"push_client_version"`

	// Tools names the external executables.
	Tools Tools `yaml:"tools"`

	// BundlerRuntimeVersion pins the native runtime the bundler wraps the app in.
	BundlerRuntimeVersion string `yaml:"bundler_runtime_version"`
	// DevDependenciesAsIs are copied verbatim from the project into non-production builds.
	DevDependenciesAsIs []string `yaml:"dev_dependencies_as_is"`
	// TestCertPassword unlocks the vendor test certificate for non-production builds.
	TestCertPassword string `yaml:"test_cert_password"`

	// Secrets are read from the environment, never from YAML.
	Secrets Secrets `yaml:"-"`
	// Project is read from ProjectDir/package.json.
	Project Project `yaml:"-"`
}

// Tools names the external executables invoked by the pipeline.
type Tools struct {
	PushClient string `yaml:"push_client"`
	// Updater is the updater repository; UpdaterBinary is the executable it builds.
	Updater       string `yaml:"updater"`
	UpdaterBinary string `yaml:"updater_binary"`
	Yarn          string `yaml:"yarn"`
	Bundler       string `yaml:"bundler"`
	DiskImage     string `yaml:"disk_image"`
	Installer     string `yaml:"installer"`
}

// Secrets are environment-provided credentials and paths.
type Secrets struct {
	// APIToken authenticates distribution API requests (GCPUSH_TOKEN).
	APIToken string
	// CertPassword unlocks the production signing certificate (GC_CERT_PASS).
	CertPassword string
	// Workspace is the local source root used for development tool binaries.
	Workspace string
}

const (
	// DefaultConfigFilename is the default configuration file name.
	DefaultConfigFilename = "client-release.yaml"

	// EnvDevelopment and EnvProduction are the supported environments.
	EnvDevelopment = "development"
	EnvProduction  = "production"

	// Environment variable names for secrets.
	EnvAPIToken     = "GCPUSH_TOKEN"
	EnvCertPassword = "GC_CERT_PASS"
	EnvWorkspace    = "GC_WORKSPACE"
	EnvGoPath       = "GOPATH"
)

var (
	errConfigIsNotSet      = errors.New("configuration is not set")
	errUnknownEnvironment  = errors.New("unknown environment")
	errClientBuildRequired = errors.New("client build directory must be provided")
	errTokenRequired       = errors.New(EnvAPIToken + " must be set when publishing")
	errWorkspaceRequired   = errors.New(EnvWorkspace + " or " + EnvGoPath + " must be set for development builds")
)

// Load reads the YAML configuration at path. A missing default file yields
// an empty configuration so that flags alone can drive a run.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return new(Config), nil
		}

		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := new(Config)
	if err = yaml.Unmarshal(contents, cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return cfg, nil
}

// ApplyEnv fills Secrets using getenv, typically os.Getenv.
func ApplyEnv(cfg *Config, getenv func(string) string) {
	cfg.Secrets.APIToken = strings.TrimSpace(getenv(EnvAPIToken))
	cfg.Secrets.CertPassword = strings.TrimSpace(getenv(EnvCertPassword))

	cfg.Secrets.Workspace = strings.TrimSpace(getenv(EnvWorkspace))
	if cfg.Secrets.Workspace == "" {
		// GOPATH may list several roots; the first one holds the sources.
		gopath := strings.TrimSpace(getenv(EnvGoPath))
		if gopath != "" {
			cfg.Secrets.Workspace = filepath.SplitList(gopath)[0]
		}
	}
}

// Validate fills defaults and checks the settings for consistency.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.Platform == "" {
		cfg.Platform = build.HostPlatform()
	}

	platform, err := build.ParsePlatform(string(cfg.Platform))
	if err != nil {
		return err
	}

	cfg.Platform = platform

	if cfg.Arch == "" {
		cfg.Arch = DefaultArch
	}

	if err = build.ValidateArch(cfg.Arch); err != nil {
		return err
	}

	if cfg.Environment == "" {
		cfg.Environment = EnvProduction
	}

	if cfg.Environment != EnvDevelopment && cfg.Environment != EnvProduction {
		return fmt.Errorf("%w: %q", errUnknownEnvironment, cfg.Environment)
	}

	applyDefaults(cfg)

	if cfg.ClientBuildDir == "" {
		return errClientBuildRequired
	}

	for _, raw := range []string{cfg.APIHost, cfg.ReleaseBaseURL} {
		if _, err = url.ParseRequestURI(raw); err != nil {
			return fmt.Errorf("invalid url %q: %w", raw, err)
		}
	}

	if !cfg.SkipPublish && cfg.Secrets.APIToken == "" {
		return errTokenRequired
	}

	if cfg.IsDevelopment() && cfg.Secrets.Workspace == "" {
		return errWorkspaceRequired
	}

	return nil
}

// IsDevelopment reports whether the run targets the development environment.
func (c *Config) IsDevelopment() bool {
	return c.Environment == EnvDevelopment
}

// PlatformArch returns the bundler platform/arch tag, e.g. "win64".
func (c *Config) PlatformArch() string {
	return c.Platform.PlatformArch(c.Arch)
}

// BuildRoot is the directory the installer packages: the data directory,
// the updater and the manifest.
func (c *Config) BuildRoot() string {
	return filepath.Join(c.ClientBuildDir, "build")
}

// RawPackageDir is the bundler output for the configured platform.
func (c *Config) RawPackageDir() string {
	return filepath.Join(c.BuildRoot(), c.PlatformArch())
}

// TrashDir receives files that cannot be removed in place.
func (c *Config) TrashDir() string {
	return filepath.Join(c.ClientBuildDir, ".trash")
}

// ManifestPath is where the updater manifest is written.
func (c *Config) ManifestPath() string {
	return filepath.Join(c.BuildRoot(), ".manifest")
}

// PackageArchivePath is the package artifact location.
func (c *Config) PackageArchivePath() string {
	return filepath.Join(c.ClientBuildDir, build.PackageArchiveName(c.PlatformArch()))
}

// InstallerPath is the installer artifact location.
func (c *Config) InstallerPath() string {
	return filepath.Join(c.ClientBuildDir, c.Platform.InstallerFilename())
}

// LockPath guards the build directory against concurrent runs.
func (c *Config) LockPath() string {
	return filepath.Join(c.ClientBuildDir, ".release.lock")
}

// PlatformURL tells the updater where to check for updates.
func (c *Config) PlatformURL() string {
	return strings.TrimRight(c.APIHost, "/") + "/x/updater/check-for-updates"
}
