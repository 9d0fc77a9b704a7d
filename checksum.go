package main

import (
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"
)

// computeChecksum digests the artifact at artifactPath so it can be logged next to its upload
func computeChecksum(artifactPath string, algorithm string) (string, *publishError) {
	hasher, pubErr := getHasher(algorithm)
	if pubErr != nil {
		return "", pubErr
	}

	artifact, err := os.Open(artifactPath)
	if err != nil {
		return "", wrapErrorWithCode(fileAccessError, err)
	}
	defer artifact.Close()

	if _, err := io.Copy(hasher, artifact); err != nil {
		return "", wrapErrorWithCode(errorWhileComputingChecksum, fmt.Errorf("Failed to read %s: %w", artifactPath, err))
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// getHasher maps a --checksum-algo value to its hash. Anything else is a configuration error.
func getHasher(algorithm string) (hash.Hash, *publishError) {
	switch algorithm {
	case "sha256":
		return sha256.New(), nil
	case "sha512":
		return sha512.New(), nil
	default:
		return nil, newError(configurationError, fmt.Sprintf("The checksum algorithm \"%s\" is not supported. Valid values are: sha256, sha512", algorithm))
	}
}
