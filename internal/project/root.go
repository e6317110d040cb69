package project

import (
	"fmt"
	"os"
	"path/filepath"
)

// ManifestName is the file name of the project configuration.
const ManifestName = "bracefmt.toml"

// FindManifest walks up from startDir to locate bracefmt.toml. A directory
// whose candidate cannot be stat'd (unreadable, symlink loop) is treated as
// having no manifest; the walk of the target reports the access problem.
func FindManifest(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	if info, statErr := os.Stat(dir); statErr == nil && !info.IsDir() {
		dir = filepath.Dir(dir)
	}
	for {
		candidate := filepath.Join(dir, ManifestName)
		if info, err := os.Stat(candidate); err == nil && info.Mode().IsRegular() {
			return candidate, true, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}
