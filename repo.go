package main

import (
	"fmt"
	"strings"

	"github.com/gruntwork-io/publish/source"
)

// parseRepoOwnerAndName splits "<owner>/<name>" into a source.Repo. Exactly one separator and two non-empty parts are
// required.
func parseRepoOwnerAndName(repoOwnerAndName string, sourceType source.SourceType) (source.Repo, *publishError) {
	parts := strings.Split(repoOwnerAndName, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return source.Repo{}, newError(configurationError, fmt.Sprintf("Repo %q must be of the form <owner>/<name>", repoOwnerAndName))
	}

	return source.Repo{
		Owner: parts[0],
		Name:  parts[1],
		Type:  sourceType,
	}, nil
}
