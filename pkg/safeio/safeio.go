package safeio

import (
	"errors"
	"path/filepath"
	"strings"
)

// CleanUserPath cleans a user-provided path and rejects traversal attempts.
// Returns paths with forward slashes for cross-platform consistency.
func CleanUserPath(p string) (string, error) {
	c := filepath.Clean(p)
	if strings.Contains(c, "..") {
		return "", errors.New("path traversal detected")
	}
	return filepath.ToSlash(c), nil
}

// EnsureContained verifies that path resolves to a location inside baseDir.
// Returns the absolute resolved path on success. Used by the archive
// extractor before any entry is written to disk.
func EnsureContained(baseDir, path string) (string, error) {
	baseAbs, err := filepath.Abs(baseDir)
	if err != nil {
		return "", errors.New("failed to resolve base directory")
	}
	pathAbs, err := filepath.Abs(path)
	if err != nil {
		return "", errors.New("failed to resolve target path")
	}

	rel, err := filepath.Rel(baseAbs, pathAbs)
	if err != nil {
		return "", errors.New("failed to compute relative path")
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", errors.New("path is outside base directory")
	}
	return pathAbs, nil
}
