package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	semver "github.com/Masterminds/semver/v3"

	"github.com/oshokin/client-release/internal/domain/build"
)

// ProjectFilename is the client project descriptor.
const ProjectFilename = "package.json"

// Project is the subset of package.json the release needs.
type Project struct {
	// Version is the client release version pushed to the distribution service.
	Version string `json:"version"`
	// UpdaterVersion is the updater tag the client is built against, e.g. "v2.0.1.loader".
	UpdaterVersion string `json:"updaterVersion"`
}

var errUpdaterVersionRequired = errors.New("updaterVersion is missing from " + ProjectFilename)

// LoadProject reads and checks ProjectDir/package.json.
func LoadProject(projectDir string) (Project, error) {
	path := filepath.Join(projectDir, ProjectFilename)

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Project{}, fmt.Errorf("read project: %w", err)
	}

	var project Project
	if err = json.Unmarshal(contents, &project); err != nil {
		return Project{}, fmt.Errorf("decode %s: %w", path, err)
	}

	if _, err = semver.StrictNewVersion(project.Version); err != nil {
		return Project{}, fmt.Errorf("%w: release version %q: %w", build.ErrInvalidVersion, project.Version, err)
	}

	if project.UpdaterVersion == "" {
		return Project{}, errUpdaterVersionRequired
	}

	return project, nil
}

// UpdaterVersionInfo parses the updater tag.
func (p Project) UpdaterVersionInfo() (build.VersionInfo, error) {
	return build.ParseVersionTag(p.UpdaterVersion)
}

// ReleaseTag is the git release tag of the updater: UpdaterVersion with only
// the loader suffix removed, so prerelease parts like "-beta" are kept.
func (p Project) ReleaseTag() string {
	return strings.TrimSuffix(strings.TrimSpace(p.UpdaterVersion), build.LoaderSuffix)
}
