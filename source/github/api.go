package github

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/go-github/v60/github"
	"github.com/gruntwork-io/publish/source"
)

// newClient builds a go-github client for the given config. A non-empty ApiUrl points the client at a GitHub
// Enterprise instance; UploadUrl defaults to ApiUrl in that case.
func newClient(config source.Config) (*github.Client, error) {
	client := github.NewClient(config.HttpClient)
	if config.Token != "" {
		client = client.WithAuthToken(config.Token)
	}

	if config.ApiUrl == "" {
		return client, nil
	}

	uploadUrl := config.UploadUrl
	if uploadUrl == "" {
		uploadUrl = config.ApiUrl
	}

	enterpriseClient, err := client.WithEnterpriseURLs(config.ApiUrl, uploadUrl)
	if err != nil {
		return nil, fmt.Errorf("invalid GitHub API url %s: %w", config.ApiUrl, err)
	}
	return enterpriseClient, nil
}

// classifyError maps the HTTP status of a failed API call onto the source sentinel errors
func classifyError(resp *github.Response, err error) error {
	status := 0
	if resp != nil && resp.Response != nil {
		status = resp.StatusCode
	}

	var errResp *github.ErrorResponse
	if status == 0 && errors.As(err, &errResp) && errResp.Response != nil {
		status = errResp.Response.StatusCode
	}

	switch status {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", source.ErrReleaseNotFound, err)
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %s", source.ErrUnauthorized, err)
	default:
		return err
	}
}
