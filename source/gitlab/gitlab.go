package gitlab

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"strings"

	"github.com/gruntwork-io/publish/source"
	"github.com/sirupsen/logrus"
)

// GitLabSource implements source.Source for GitLab
type GitLabSource struct {
	config      source.Config
	logger      *logrus.Entry
	progressOut io.Writer
}

// NewGitLabSource creates a new GitLab source
func NewGitLabSource(config source.Config) source.Source {
	if config.ApiUrl == "" {
		config.ApiUrl = defaultApiUrl
	}
	return &GitLabSource{
		config:      config,
		logger:      config.Logger,
		progressOut: os.Stdout,
	}
}

// Type returns the source type
func (s *GitLabSource) Type() source.SourceType {
	return source.TypeGitLab
}

// GetReleaseByTag returns the release for a specific tag
func (s *GitLabSource) GetReleaseByTag(ctx context.Context, repo source.Repo, tag string) (source.Release, error) {
	projectId := encodeProjectPath(repo.Owner, repo.Name)
	path := fmt.Sprintf("projects/%s/releases/%s", projectId, url.PathEscape(tag))

	if s.logger != nil {
		s.logger.Debugf("Looking up GitLab release with tag %q in %s", tag, repo.FullName())
	}

	resp, err := callGitLabApi(ctx, s.config.HttpClient, http.MethodGet, s.config.ApiUrl, path, s.config.Token, nil, map[string]string{})
	if err != nil {
		return nil, fmt.Errorf("error looking up release with tag %q in %s: %w", tag, repo.FullName(), err)
	}
	defer resp.Body.Close()

	var apiRelease GitLabReleaseResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiRelease); err != nil {
		return nil, err
	}

	return &gitLabRelease{
		source:  s,
		repo:    repo,
		tag:     tag,
		release: apiRelease,
	}, nil
}

// gitLabRelease is the source.Release handle for a resolved GitLab release. GitLab has no direct release asset
// storage, so an upload is a project upload followed by a release link pointing at it.
type gitLabRelease struct {
	source  *GitLabSource
	repo    source.Repo
	tag     string
	release GitLabReleaseResponse
}

func (r *gitLabRelease) Tag() string {
	return r.tag
}

func (r *gitLabRelease) Url() string {
	return r.release.Links.Self
}

// UploadAsset uploads file to the project and links it from the release under name
func (r *gitLabRelease) UploadAsset(ctx context.Context, contentType, name string, file *os.File) error {
	upload, err := r.uploadFile(ctx, contentType, name, file)
	if err != nil {
		return fmt.Errorf("error uploading %s to %s: %w", name, r.repo.FullName(), err)
	}

	link := GitLabAssetLink{
		Name:     name,
		Url:      r.absoluteUploadUrl(upload),
		LinkType: "package",
	}
	if err := r.createLink(ctx, link); err != nil {
		return fmt.Errorf("error linking %s to release %s of %s: %w", name, r.tag, r.repo.FullName(), err)
	}

	if r.source.logger != nil {
		r.source.logger.Debugf("Linked %s to release %s as %s", name, r.tag, link.Url)
	}
	return nil
}

func (r *gitLabRelease) uploadFile(ctx context.Context, contentType, name string, file *os.File) (GitLabUploadResponse, error) {
	var upload GitLabUploadResponse

	var reader io.Reader = file
	var counter *writeCounter
	if r.source.config.WithProgress {
		var size int64
		if info, err := file.Stat(); err == nil {
			size = info.Size()
		}
		counter = newWriteCounter(r.source.progressOut, size)
		reader = io.TeeReader(file, counter)
	}

	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, name))
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return upload, err
	}
	_, err = io.Copy(part, reader)
	if counter != nil {
		counter.Finish()
	}
	if err != nil {
		return upload, err
	}
	if err := writer.Close(); err != nil {
		return upload, err
	}

	path := fmt.Sprintf("projects/%s/uploads", encodeProjectPath(r.repo.Owner, r.repo.Name))
	resp, err := callGitLabApi(ctx, r.source.config.HttpClient, http.MethodPost, r.source.config.ApiUrl, path, r.source.config.Token, body, map[string]string{
		"Content-Type": writer.FormDataContentType(),
	})
	if err != nil {
		return upload, err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(&upload); err != nil {
		return upload, err
	}
	return upload, nil
}

func (r *gitLabRelease) createLink(ctx context.Context, link GitLabAssetLink) error {
	payload, err := json.Marshal(link)
	if err != nil {
		return err
	}

	path := fmt.Sprintf("projects/%s/releases/%s/assets/links", encodeProjectPath(r.repo.Owner, r.repo.Name), url.PathEscape(r.tag))
	resp, err := callGitLabApi(ctx, r.source.config.HttpClient, http.MethodPost, r.source.config.ApiUrl, path, r.source.config.Token, bytes.NewReader(payload), map[string]string{
		"Content-Type": "application/json",
	})
	if err != nil {
		return err
	}
	return resp.Body.Close()
}

// absoluteUploadUrl turns the upload response into a URL usable from a release link. Newer GitLab versions return a
// full_path relative to the instance root; older ones only a url relative to the project.
func (r *gitLabRelease) absoluteUploadUrl(upload GitLabUploadResponse) string {
	base := strings.TrimSuffix(r.source.config.ApiUrl, "/")
	if upload.FullPath != "" {
		return base + upload.FullPath
	}
	return fmt.Sprintf("%s/%s%s", base, r.repo.FullName(), upload.Url)
}

func init() {
	// Register the factory function
	source.NewGitLabSource = NewGitLabSource
}
