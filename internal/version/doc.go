// Package version exposes build metadata of the client-release tool.
//
// Version, Commit and BuildTime are injected through ldflags; when they are
// not, Version falls back to the module version recorded by the Go toolchain.
package version
