// Package config defines the release configuration: YAML settings, secrets
// taken from the environment, and the project version read from package.json.
//
// Validate fills per-environment defaults (hosts, package ids, tool names and
// directories) and rejects inconsistent combinations before any stage runs.
package config
