package build

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// LoaderSuffix marks the loader variant of the updater version.
// The git release of the updater is tagged without it.
const LoaderSuffix = ".loader"

var versionTagPattern = regexp.MustCompile(`^v?(\d+)\.(\d+)\.(\d+)`)

// VersionInfo is the numeric major.minor.patch triple of a version tag.
type VersionInfo struct {
	Major int
	Minor int
	Patch int
}

// ParseVersionTag extracts the numeric triple from tags like "v2.0.1",
// "2.0.1-beta" or "v2.0.1.loader".
func ParseVersionTag(tag string) (VersionInfo, error) {
	trimmed := strings.TrimSuffix(strings.TrimSpace(tag), LoaderSuffix)

	match := versionTagPattern.FindStringSubmatch(trimmed)
	if match == nil {
		return VersionInfo{}, fmt.Errorf("%w: %q", ErrInvalidVersion, tag)
	}

	parts := make([]int, 0, len(match)-1)

	for _, raw := range match[1:] {
		value, err := strconv.Atoi(raw)
		if err != nil {
			return VersionInfo{}, fmt.Errorf("%w: %q: %w", ErrInvalidVersion, tag, err)
		}

		parts = append(parts, value)
	}

	return VersionInfo{
		Major: parts[0],
		Minor: parts[1],
		Patch: parts[2],
	}, nil
}

// Triple returns the version as [major, minor, patch].
func (v VersionInfo) Triple() [3]int {
	return [3]int{v.Major, v.Minor, v.Patch}
}

// String renders "major.minor.patch".
func (v VersionInfo) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}
