package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const versionFileName = "VERSION"

// readVersionFile returns the contents of the VERSION file at the root of repoDir. The contents are returned exactly
// as read unless trim is set.
func readVersionFile(repoDir string, trim bool) (string, *publishError) {
	repoPath, err := filepath.Abs(repoDir)
	if err != nil {
		return "", wrapErrorWithCode(fileAccessError, err)
	}

	versionFilePath := filepath.Join(repoPath, versionFileName)
	contents, err := os.ReadFile(versionFilePath)
	if err != nil {
		return "", wrapErrorWithCode(fileAccessError, fmt.Errorf("Failed to read version file %s: %w", versionFilePath, err))
	}

	if trim {
		return strings.TrimSpace(string(contents)), nil
	}
	return string(contents), nil
}
