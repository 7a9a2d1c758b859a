package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/client-release/internal/config"
	"github.com/oshokin/client-release/internal/logger"
	"github.com/oshokin/client-release/internal/service/release"
	"github.com/oshokin/client-release/internal/version"
)

var errUnknownLogLevel = errors.New("unknown log level")

var (
	// configPath to the configuration YAML file.
	configPath string
	// logLevel is the minimum level of printed messages.
	logLevel string

	platform       string
	arch           string
	environment    string
	production     bool
	skipPublish    bool
	useTestPackage bool

	// rootCmd builds, packages and publishes the client.
	rootCmd = &cobra.Command{
		Use:           "client-release",
		Short:         "Build client installers and publish them to the distribution service",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			level, ok := logger.ParseLogLevel(logLevel)
			if !ok {
				return fmt.Errorf("%w: %q", errUnknownLogLevel, logLevel)
			}

			logger.SetLevel(level)

			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			options := &release.Options{
				ConfigPath:  configPath,
				Platform:    platform,
				Arch:        arch,
				Environment: environment,
			}

			// Unset flags keep the configuration file values.
			flags := cmd.Flags()
			if flags.Changed("production") {
				options.Production = &production
			}

			if flags.Changed("skip-publish") {
				options.SkipPublish = &skipPublish
			}

			if flags.Changed("use-test-package") {
				options.UseTestPackage = &useTestPackage
			}

			return release.Run(ctx, options)
		},
	}
)

// Execute runs the client-release CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		logger.Error(context.Background(), err)
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	flags := rootCmd.Flags()

	flags.StringVarP(&configPath, "config", "c", "", "path to configuration file (default "+config.DefaultConfigFilename+" if present)")
	flags.StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn or error")
	flags.StringVar(&platform, "platform", "", "target platform: windows, mac or linux (default: this machine)")
	flags.StringVar(&arch, "arch", "", "target architecture: 32 or 64")
	flags.StringVar(&environment, "env", "", "distribution environment: development or production")
	flags.BoolVar(&production, "production", false, "build with the release runtime and the production certificate")
	flags.BoolVar(&skipPublish, "skip-publish", false, "build installers without publishing them")
	flags.BoolVar(&useTestPackage, "use-test-package", false, "publish to the test packages")
}
