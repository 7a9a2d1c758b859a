package build

import "errors"

// Error taxonomy shared by all pipeline stages. Stages wrap one of these
// sentinels with context, so callers match them with errors.Is.
var (
	// ErrInvalidVersion is returned when a version tag cannot be parsed.
	ErrInvalidVersion = errors.New("invalid version")
	// ErrDownload is returned for non-200 responses and broken archives.
	ErrDownload = errors.New("download failed")
	// ErrBuildNotFound is returned when no remote build matches the uploaded artifact.
	ErrBuildNotFound = errors.New("build not found")
	// ErrProcess is returned when an external tool exits with a non-zero code.
	ErrProcess = errors.New("process failed")
	// ErrFileSystem is returned for rename, move and permission failures.
	ErrFileSystem = errors.New("file system error")
)
