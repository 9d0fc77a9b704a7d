package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const artifactSuffix = ".gz"
const artifactContentType = "application/gzip"

// Artifact is a build output that gets attached to the release
type Artifact struct {
	Name string // Base name, used as the asset name
	Path string // Absolute path on disk
	Size int64
}

// findArtifacts lists the files directly under outDir whose name ends in artifactSuffix, sorted by name. Directories
// are never descended into.
func findArtifacts(outDir string) ([]Artifact, *publishError) {
	outPath, err := filepath.Abs(outDir)
	if err != nil {
		return nil, wrapErrorWithCode(fileAccessError, err)
	}

	// os.ReadDir returns entries sorted by filename
	entries, err := os.ReadDir(outPath)
	if err != nil {
		return nil, wrapErrorWithCode(fileAccessError, fmt.Errorf("Failed to list output directory %s: %w", outPath, err))
	}

	var artifacts []Artifact
	for _, entry := range entries {
		if !strings.HasSuffix(entry.Name(), artifactSuffix) {
			continue
		}

		artifactPath := filepath.Join(outPath, entry.Name())

		// Stat rather than entry.Info() so that symlinks are followed
		info, err := os.Stat(artifactPath)
		if err != nil {
			return nil, wrapErrorWithCode(fileAccessError, err)
		}
		if info.IsDir() {
			continue
		}

		artifacts = append(artifacts, Artifact{
			Name: entry.Name(),
			Path: artifactPath,
			Size: info.Size(),
		})
	}

	return artifacts, nil
}
