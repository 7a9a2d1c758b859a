package build

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// Platform is the operating system a client build targets.
type Platform string

const (
	// PlatformWindows targets Windows.
	PlatformWindows Platform = "windows"
	// PlatformMac targets macOS.
	PlatformMac Platform = "mac"
	// PlatformLinux targets Linux.
	PlatformLinux Platform = "linux"
)

var (
	errUnknownPlatform = errors.New("unknown platform")
	errUnknownArch     = errors.New("unknown architecture")
)

// ParsePlatform accepts the canonical names plus the bundler aliases
// "win", "osx" and "darwin".
func ParsePlatform(s string) (Platform, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "windows", "win":
		return PlatformWindows, nil
	case "mac", "osx", "darwin":
		return PlatformMac, nil
	case "linux":
		return PlatformLinux, nil
	default:
		return "", fmt.Errorf("%w: %q", errUnknownPlatform, s)
	}
}

// HostPlatform is the platform of the running machine, linux for unknown systems.
func HostPlatform() Platform {
	p, err := ParsePlatform(runtime.GOOS)
	if err != nil {
		return PlatformLinux
	}

	return p
}

// ValidateArch checks that arch is one of the architectures the bundler supports.
func ValidateArch(arch string) error {
	switch arch {
	case "32", "64":
		return nil
	default:
		return fmt.Errorf("%w: %q", errUnknownArch, arch)
	}
}

// OS returns the platform name the updater expects in the manifest.
func (p Platform) OS() string {
	return string(p)
}

// bundlerName is the platform prefix used by the native bundler.
func (p Platform) bundlerName() string {
	switch p {
	case PlatformWindows:
		return "win"
	case PlatformMac:
		return "osx"
	default:
		return "linux"
	}
}

// PlatformArch returns the bundler's platform/arch tag, e.g. "win64" or "osx64".
func (p Platform) PlatformArch(arch string) string {
	return p.bundlerName() + arch
}

// AppName is the bundled application name:
// kebab case on linux, no spaces on windows so it reads well in the process
// list, and the display name on mac for the Applications folder.
func (p Platform) AppName() string {
	switch p {
	case PlatformWindows:
		return "GamingChannelClient"
	case PlatformMac:
		return "Gaming Channel Client"
	default:
		return "gaming-channel-client"
	}
}

// LaunchExecutable is the path of the client executable inside the data directory.
func (p Platform) LaunchExecutable() string {
	switch p {
	case PlatformWindows:
		return "GamingChannelClient.exe"
	case PlatformMac:
		return "Gaming Channel Client.app/Contents/MacOS/nwjs"
	default:
		return "gaming-channel-client"
	}
}

// UpdaterFilename is the name the updater is given next to the data directory.
func (p Platform) UpdaterFilename() string {
	if p == PlatformWindows {
		return "GamingChannelClient.exe"
	}

	return "gaming-channel-client"
}

// ExecutableName appends the platform executable extension to name.
func (p Platform) ExecutableName(name string) string {
	if p == PlatformWindows {
		return name + ".exe"
	}

	return name
}

// ReleaseAssetName is the zip asset name of a tool release for this platform.
func (p Platform) ReleaseAssetName() string {
	switch p {
	case PlatformWindows:
		return "windows.zip"
	case PlatformMac:
		return "osx.zip"
	default:
		return "linux.zip"
	}
}

// InstallerFilename is the name of the installer artifact for this platform.
func (p Platform) InstallerFilename() string {
	switch p {
	case PlatformWindows:
		return "GamingChannelClientSetup.exe"
	case PlatformMac:
		return "GamingChannelClient.dmg"
	default:
		return "GamingChannelClient.tar.gz"
	}
}
