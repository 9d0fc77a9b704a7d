package source

import (
	"context"
	"errors"
	"net/http"
	"os"

	"github.com/sirupsen/logrus"
)

// SourceType identifies the provider type
type SourceType string

const (
	TypeGitHub SourceType = "github"
	TypeGitLab SourceType = "gitlab"
)

// ErrReleaseNotFound is returned (wrapped) by GetReleaseByTag when no release carries the requested tag.
var ErrReleaseNotFound = errors.New("release not found")

// ErrUnauthorized is returned (wrapped) when the provider rejects the configured credentials.
var ErrUnauthorized = errors.New("unauthorized")

// Repo represents a repository on any source
type Repo struct {
	Owner string     // Account/namespace
	Name  string     // Repository name
	Type  SourceType // Provider type
}

// FullName returns the repo in "owner/name" form
func (r Repo) FullName() string {
	return r.Owner + "/" + r.Name
}

// Release is a handle on a tagged release that assets can be attached to
type Release interface {
	// Tag returns the tag the release was resolved from
	Tag() string

	// Url returns a human-readable URL of the release, if the provider reports one
	Url() string

	// UploadAsset attaches the contents of file to the release under the given name
	UploadAsset(ctx context.Context, contentType, name string, file *os.File) error
}

// Config holds source-specific configuration
type Config struct {
	ApiUrl       string        // API endpoint base URL; empty means the provider's public default
	UploadUrl    string        // Upload endpoint base URL (GitHub Enterprise only)
	Token        string        // Auth token
	WithProgress bool          // Print upload progress where the provider supports it
	HttpClient   *http.Client  // Optional; defaults to a plain http.Client
	Logger       *logrus.Entry // Logger instance
}

// Source interface defines operations every provider must implement
type Source interface {
	// Type returns the source type identifier
	Type() SourceType

	// GetReleaseByTag returns the release whose tag equals tag
	GetReleaseByTag(ctx context.Context, repo Repo, tag string) (Release, error)
}
