package build

import "strconv"

// ManifestSchemaVersion is the manifest format understood by the updater.
const ManifestSchemaVersion = 2

// Manifest describes an installed client build to the updater.
type Manifest struct {
	Version        int           `json:"version"`
	AutoRun        bool          `json:"autoRun"`
	GameInfo       GameInfo      `json:"gameInfo"`
	LaunchOptions  LaunchOptions `json:"launchOptions"`
	OS             string        `json:"os"`
	Arch           string        `json:"arch"`
	IsFirstInstall bool          `json:"isFirstInstall"`
}

// GameInfo identifies the installed build and its files.
type GameInfo struct {
	Dir                     string                  `json:"dir"`
	UID                     string                  `json:"uid"`
	ArchiveFiles            []string                `json:"archiveFiles"`
	PlatformURL             string                  `json:"platformUrl"`
	DeclaredImplementations DeclaredImplementations `json:"declaredImplementations"`
}

// DeclaredImplementations lists updater capabilities the client supports.
type DeclaredImplementations struct {
	Presence          bool `json:"presence"`
	BadUpdateRecovery bool `json:"badUpdateRecovery"`
}

// LaunchOptions tells the updater what to run.
type LaunchOptions struct {
	Executable string `json:"executable"`
}

// GameUID joins a package id and a build id as "{packageId}-{buildId}".
func GameUID(packageID, buildID int64) string {
	return strconv.FormatInt(packageID, 10) + "-" + strconv.FormatInt(buildID, 10)
}

// DataDirName is the updater data directory name for a build.
func DataDirName(packageID, buildID int64) string {
	return "data-" + GameUID(packageID, buildID)
}
