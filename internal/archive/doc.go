// Package archive creates portable tar.gz archives and extracts zip files.
//
// ExtractZip returns only after the archive handle is closed, so callers may
// move or trash the archive right away.
package archive
