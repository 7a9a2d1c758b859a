// Package fetcher obtains version-pinned tool binaries for a build: the
// updater shipped next to the client and the push client used to publish.
//
// Development runs copy a locally built binary from the workspace; production
// runs download the platform zip of a tagged release, extract it and install
// the binary. Both always overwrite the destination.
package fetcher
