// Package distribution is a client for the distribution service push API.
//
// It resolves release records by package and version and lists the builds
// of a release. Requests are authenticated with the push token.
package distribution
