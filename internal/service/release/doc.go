// Package release drives a client release: it loads the configuration,
// assembles the ordered stage list for the target platform and publish mode,
// runs it fail-fast while holding the build directory lock, and prints a
// per-stage summary.
package release
