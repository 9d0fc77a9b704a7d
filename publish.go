package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/gruntwork-io/publish/credentials"
	"github.com/gruntwork-io/publish/source"
)

// sourceFactory builds a provider; source.NewSource in production, a fake in tests
type sourceFactory func(sourceType source.SourceType, config source.Config) (source.Source, error)

// publishRelease attaches every artifact under options.OutPath to the release tagged with the contents of the VERSION
// file in options.RepoDir. Uploads run in order and the first failure aborts the rest.
func publishRelease(ctx context.Context, options PublishOptions, factory credentials.Factory, newSource sourceFactory) error {
	logger := options.Logger

	sourceType, err := source.ParseSourceType(options.SourceType)
	if err != nil {
		return wrapErrorWithCode(configurationError, err)
	}

	repo, pubErr := parseRepoOwnerAndName(options.RepoOwnerAndName, sourceType)
	if pubErr != nil {
		return pubErr
	}

	tag, pubErr := readVersionFile(options.RepoDir, options.TrimVersion)
	if pubErr != nil {
		return pubErr
	}
	logger.Debugf("Read tag %q from %s", tag, options.RepoDir)

	creds, err := factory.Lookup(options.Profile)
	if err != nil {
		return wrapErrorWithCode(configurationError, err)
	}

	src, err := newSource(sourceType, source.Config{
		ApiUrl:       creds.ApiUrl,
		UploadUrl:    creds.UploadUrl,
		Token:        creds.Token,
		WithProgress: options.WithProgress,
		Logger:       logger,
	})
	if err != nil {
		return wrapErrorWithCode(configurationError, fmt.Errorf("Failed to create source: %w", err))
	}

	release, err := src.GetReleaseByTag(ctx, repo, tag)
	if err != nil {
		switch {
		case errors.Is(err, source.ErrReleaseNotFound):
			return wrapErrorWithCode(releaseNotFound, err)
		case errors.Is(err, source.ErrUnauthorized):
			return wrapErrorWithCode(invalidTokenOrAccessDenied, err)
		default:
			return wrapError(err)
		}
	}
	logger.Infof("Found %s release %s of %s %s", src.Type(), release.Tag(), repo.FullName(), release.Url())

	artifacts, pubErr := findArtifacts(options.OutPath)
	if pubErr != nil {
		return pubErr
	}

	if len(artifacts) == 0 {
		logger.Infof("No artifacts matching *%s found in %s. Nothing to upload.", artifactSuffix, options.OutPath)
		return nil
	}

	for _, artifact := range artifacts {
		logger.Infof("Attaching file %s (%s) to the %s release %s", artifact.Path, humanize.Bytes(uint64(artifact.Size)), src.Type(), release.Tag())

		if options.ChecksumAlgo != "" {
			checksum, pubErr := computeChecksum(artifact.Path, options.ChecksumAlgo)
			if pubErr != nil {
				return pubErr
			}
			logger.Infof("%s %s  %s", options.ChecksumAlgo, checksum, artifact.Name)
		}

		if options.DryRun {
			logger.Infof("Dry run: skipping upload of %s", artifact.Name)
			continue
		}

		if pubErr := uploadArtifact(ctx, release, artifact); pubErr != nil {
			return pubErr
		}
	}

	if options.DryRun {
		logger.Infof("Dry run complete. %d artifact(s) would be attached to release %s", len(artifacts), release.Tag())
		return nil
	}
	logger.Infof("Attached %d artifact(s) to release %s", len(artifacts), release.Tag())
	return nil
}

// uploadArtifact opens the artifact, hands it to the release and closes it again
func uploadArtifact(ctx context.Context, release source.Release, artifact Artifact) *publishError {
	file, err := os.Open(artifact.Path)
	if err != nil {
		return wrapErrorWithCode(fileAccessError, err)
	}
	defer file.Close()

	if err := release.UploadAsset(ctx, artifactContentType, artifact.Name, file); err != nil {
		return wrapErrorWithCode(uploadFailed, err)
	}
	return nil
}
