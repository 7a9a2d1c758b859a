package manifest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/oshokin/client-release/internal/domain/build"
)

// FileMode is the permission of the written manifest.
const FileMode os.FileMode = 0o644

// Repository defines persistence operations for the manifest.
type Repository interface {
	Load(ctx context.Context) (*build.Manifest, error)
	Save(ctx context.Context, manifest *build.Manifest) error
}

// FileRepository stores the manifest as a JSON file on disk.
type FileRepository struct {
	path string
}

// ErrNotFound is returned when the manifest has not been written yet.
var ErrNotFound = errors.New("manifest not found")

// NewFileRepository creates a repository for the manifest at path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{
		path: filepath.Clean(path),
	}
}

// Path returns the manifest location.
func (r *FileRepository) Path() string {
	return r.path
}

// Load reads the manifest from disk.
func (r *FileRepository) Load(_ context.Context) (*build.Manifest, error) {
	contents, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("%w: read manifest: %w", build.ErrFileSystem, err)
	}

	var manifest build.Manifest
	if err = json.Unmarshal(contents, &manifest); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}

	return &manifest, nil
}

// Save writes the manifest to disk.
func (r *FileRepository) Save(_ context.Context, manifest *build.Manifest) error {
	data, err := json.Marshal(manifest)
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}

	if err = os.WriteFile(r.path, data, FileMode); err != nil {
		return fmt.Errorf("%w: write manifest: %w", build.ErrFileSystem, err)
	}

	return nil
}
