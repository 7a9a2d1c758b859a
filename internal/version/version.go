package version

import (
	"fmt"
	"runtime/debug"
)

var (
	// Version is the release-tool version, overridden via ldflags.
	Version = "dev"
	// Commit is the short git SHA embedded at build time.
	Commit = "none"
	// BuildTime is the UTC build timestamp embedded at build time.
	BuildTime = "unknown"
)

//nolint:gochecknoinits // Falls back to module info for `go install` builds.
func init() {
	if Version != "dev" {
		return
	}

	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		Version = info.Main.Version
	}
}

// Short returns only the version string.
func Short() string {
	return Version
}

// Full returns the version with commit and build time.
func Full() string {
	return fmt.Sprintf("client-release %s, commit: %s, built at: %s", Version, Commit, BuildTime)
}
