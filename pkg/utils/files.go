// Package utils holds small path-resolution helpers shared by the
// command-line driver.
package utils

import (
	"fmt"
	"path/filepath"
)

// GetPathInfo resolves relPath against the current working directory and
// returns both the absolute path and the directory that contains it. The
// input file doesn't need to exist yet; this only cleans and anchors the
// path, it never touches the filesystem.
func GetPathInfo(relPath string) (fullPath string, parentDir string, err error) {
	abs, err := filepath.Abs(relPath)
	if err != nil {
		return "", "", fmt.Errorf("resolving %q: %w", relPath, err)
	}
	return abs, filepath.Dir(abs), nil
}
