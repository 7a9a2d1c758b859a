// Package common holds helpers shared by several services.
//
// It detects the current system actor (hostname and username) so release
// logs record who started a run.
//
//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common
