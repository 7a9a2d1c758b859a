// Package manifest persists the updater manifest.
//
// The FileRepository writes the manifest as JSON next to the data directory
// and reads it back for the installer stage.
package manifest
