package build

import "path/filepath"

// PackageArtifact is the compressed client package uploaded as the "game".
type PackageArtifact struct {
	// Path is the artifact location on disk.
	Path string
	// PlatformArch is the bundler platform/arch tag, e.g. "win64".
	PlatformArch string
}

// Filename returns the base name the distribution service records for the upload.
func (a PackageArtifact) Filename() string {
	return filepath.Base(a.Path)
}

// PackageArchiveName is the package archive filename for a platform/arch tag.
func PackageArchiveName(platformArch string) string {
	return platformArch + "-package.tar.gz"
}

// InstallerArtifact is the final distributable for a platform.
type InstallerArtifact struct {
	Path     string
	Platform Platform
}
