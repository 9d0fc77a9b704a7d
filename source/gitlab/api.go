package gitlab

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gruntwork-io/publish/source"
)

const defaultApiUrl = "https://gitlab.com"

// callGitLabApi performs an HTTP request against the GitLab v4 API rooted at apiUrl
func callGitLabApi(ctx context.Context, httpClient *http.Client, method, apiUrl, path, token string, body io.Reader, customHeaders map[string]string) (*http.Response, error) {
	reqUrl := fmt.Sprintf("%s/api/v4/%s", strings.TrimSuffix(apiUrl, "/"), path)
	return callGitLabApiRaw(ctx, httpClient, method, reqUrl, token, body, customHeaders)
}

// callGitLabApiRaw performs raw HTTP request with GitLab auth. Any non-2xx response is turned into an error.
func callGitLabApiRaw(ctx context.Context, httpClient *http.Client, method, reqUrl, token string, body io.Reader, customHeaders map[string]string) (*http.Response, error) {
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	request, err := http.NewRequestWithContext(ctx, method, reqUrl, body)
	if err != nil {
		return nil, err
	}

	// GitLab uses PRIVATE-TOKEN header (different from GitHub)
	if token != "" {
		request.Header.Set("PRIVATE-TOKEN", token)
	}

	for headerName, headerValue := range customHeaders {
		request.Header.Set(headerName, headerValue)
	}

	resp, err := httpClient.Do(request)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		buf := new(bytes.Buffer)
		_, goErr := buf.ReadFrom(resp.Body)
		resp.Body.Close()
		if goErr != nil {
			return nil, goErr
		}
		statusErr := fmt.Errorf("HTTP %d from %s %s: %s", resp.StatusCode, method, reqUrl, buf.String())

		switch resp.StatusCode {
		case http.StatusNotFound:
			return nil, fmt.Errorf("%w: %s", source.ErrReleaseNotFound, statusErr)
		case http.StatusUnauthorized, http.StatusForbidden:
			return nil, fmt.Errorf("%w: %s", source.ErrUnauthorized, statusErr)
		}
		return nil, statusErr
	}

	return resp, nil
}

// encodeProjectPath URL-encodes the project path for GitLab API
// GitLab requires owner/name to be URL-encoded (/ becomes %2F)
func encodeProjectPath(owner, name string) string {
	projectPath := owner + "/" + name
	return url.PathEscape(projectPath)
}

// writeCounter tracks upload progress, redrawing a single line on out
type writeCounter struct {
	out     io.Writer
	written uint64
	suffix  string
}

func newWriteCounter(out io.Writer, total int64) *writeCounter {
	if total > 0 {
		return &writeCounter{
			out:    out,
			suffix: fmt.Sprintf(" / %s", humanize.Bytes(uint64(total))),
		}
	}
	return &writeCounter{out: out}
}

func (wc *writeCounter) Write(p []byte) (int, error) {
	n := len(p)
	wc.written += uint64(n)
	wc.PrintProgress()
	return n, nil
}

func (wc writeCounter) PrintProgress() {
	fmt.Fprintf(wc.out, "\r%s", strings.Repeat(" ", 35))
	fmt.Fprintf(wc.out, "\rUploading... %s%s", humanize.Bytes(wc.written), wc.suffix)
}

// Finish ends the progress line so later log output starts on a fresh one
func (wc writeCounter) Finish() {
	fmt.Fprintln(wc.out)
}
