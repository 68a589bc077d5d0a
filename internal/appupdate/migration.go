package appupdate

import (
	"os"

	"github.com/atinylittleshell/seek/internal/core"
)

// GetLastUsedVersion reads the last used version from the version marker
// file. Returns empty string if no marker exists (fresh install).
func GetLastUsedVersion() string {
	data, err := os.ReadFile(core.VersionMarkerFile())
	if err != nil {
		return ""
	}
	return string(data)
}

// UpdateVersionMarker writes the current version to the version marker file.
func UpdateVersionMarker(version string) error {
	return os.WriteFile(core.VersionMarkerFile(), []byte(version), 0644)
}
