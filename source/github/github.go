package github

import (
	"context"
	"fmt"
	"net/url"
	"os"

	"github.com/google/go-github/v60/github"
	"github.com/gruntwork-io/publish/source"
	"github.com/sirupsen/logrus"
)

// GitHubSource implements source.Source for GitHub
type GitHubSource struct {
	config source.Config
	logger *logrus.Entry
}

// NewGitHubSource creates a new GitHub source
func NewGitHubSource(config source.Config) source.Source {
	return &GitHubSource{
		config: config,
		logger: config.Logger,
	}
}

// Type returns the source type
func (s *GitHubSource) Type() source.SourceType {
	return source.TypeGitHub
}

// GetReleaseByTag looks up the release for tag. The tag is passed through as-is, only path-escaped.
func (s *GitHubSource) GetReleaseByTag(ctx context.Context, repo source.Repo, tag string) (source.Release, error) {
	client, err := newClient(s.config)
	if err != nil {
		return nil, err
	}

	if s.logger != nil {
		s.logger.Debugf("Looking up GitHub release with tag %q in %s", tag, repo.FullName())
	}

	release, resp, err := client.Repositories.GetReleaseByTag(ctx, repo.Owner, repo.Name, url.PathEscape(tag))
	if err != nil {
		return nil, fmt.Errorf("error looking up release with tag %q in %s: %w", tag, repo.FullName(), classifyError(resp, err))
	}

	return &gitHubRelease{
		client:  client,
		repo:    repo,
		tag:     tag,
		release: release,
		logger:  s.logger,
	}, nil
}

// gitHubRelease is the source.Release handle for a resolved GitHub release
type gitHubRelease struct {
	client  *github.Client
	repo    source.Repo
	tag     string
	release *github.RepositoryRelease
	logger  *logrus.Entry
}

func (r *gitHubRelease) Tag() string {
	return r.tag
}

func (r *gitHubRelease) Url() string {
	return r.release.GetHTMLURL()
}

// UploadAsset uploads file as a release asset named name
func (r *gitHubRelease) UploadAsset(ctx context.Context, contentType, name string, file *os.File) error {
	opts := &github.UploadOptions{
		Name:      name,
		MediaType: contentType,
	}

	asset, resp, err := r.client.Repositories.UploadReleaseAsset(ctx, r.repo.Owner, r.repo.Name, r.release.GetID(), opts, file)
	if err != nil {
		return fmt.Errorf("error uploading %s to release %d of %s: %w", name, r.release.GetID(), r.repo.FullName(), classifyError(resp, err))
	}

	if r.logger != nil {
		r.logger.Debugf("Uploaded asset %s (id %d) to %s", asset.GetName(), asset.GetID(), r.repo.FullName())
	}
	return nil
}

func init() {
	// Register the factory function
	source.NewGitHubSource = NewGitHubSource
}
