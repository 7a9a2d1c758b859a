// Package build contains the core domain types of a client release build.
//
// It defines the target Platform and its naming conventions, the VersionInfo
// triple parsed from the updater tag, the Manifest consumed by the updater,
// the artifacts produced by the pipeline, and the error taxonomy every stage
// wraps its failures in.
package build
