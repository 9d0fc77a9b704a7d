package main

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/gruntwork-io/publish/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

// fakeGitHubApi serves the release lookup and asset upload endpoints for gardener/component-cli, tag v1.2.3
type fakeGitHubApi struct {
	mu       sync.Mutex
	uploaded []string
}

func (f *fakeGitHubApi) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v3/repos/gardener/component-cli/releases/tags/", func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/v1.2.3") {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"message":"Not Found"}`)
			return
		}
		fmt.Fprint(w, `{"id":42,"tag_name":"v1.2.3","html_url":"https://github.com/gardener/component-cli/releases/tag/v1.2.3"}`)
	})
	mux.HandleFunc("/api/uploads/repos/gardener/component-cli/releases/42/assets", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/gzip", r.Header.Get("Content-Type"))
		io.Copy(io.Discard, r.Body)

		f.mu.Lock()
		f.uploaded = append(f.uploaded, r.URL.Query().Get("name"))
		f.mu.Unlock()

		w.WriteHeader(http.StatusCreated)
		fmt.Fprintf(w, `{"id":1,"name":%q}`, r.URL.Query().Get("name"))
	})
	return mux
}

func (f *fakeGitHubApi) uploadedNames() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.uploaded...)
}

// We want to call runPublish() using the app.Action wrapper like the main CLI handler, but we don't want to write to
// stderr and suddenly exit using os.Exit(1), so we use a separate wrapper method in the tests.
func runPublishTestWrapper(c *cli.Context) error {
	return runPublish(c, GetProjectLoggerWithWriter(c.App.Writer))
}

func runPublishCommand(t *testing.T, args ...string) (string, error) {
	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)

	app := CreatePublishCli("test", stdout, stderr)
	app.Action = runPublishTestWrapper
	err := app.Run(append([]string{"publish"}, args...))

	logBufferContentsLineByLine(t, stdout, "stdout")
	logBufferContentsLineByLine(t, stderr, "stderr")
	return stdout.String(), err
}

func logBufferContentsLineByLine(t *testing.T, out *bytes.Buffer, label string) {
	t.Logf("[%s] Full contents of %s:", t.Name(), label)
	for _, line := range strings.Split(out.String(), "\n") {
		t.Logf("[%s] %s", t.Name(), line)
	}
}

func setupRepoAndArtifacts(t *testing.T, version string, artifacts ...string) (string, string) {
	repoDir := t.TempDir()
	outPath := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(repoDir, "VERSION"), []byte(version), 0644))
	writeFiles(t, outPath, artifacts...)
	return repoDir, outPath
}

func TestPublishCliUploadsToGitHub(t *testing.T) {
	api := &fakeGitHubApi{}
	server := httptest.NewServer(api.handler(t))
	defer server.Close()

	repoDir, outPath := setupRepoAndArtifacts(t, "v1.2.3", "b.gz", "a.tar.gz", "c.txt")

	output, err := runPublishCommand(t,
		"--repo", "gardener/component-cli",
		"--repo-dir", repoDir,
		"--out-path", outPath,
		"--github-oauth-token", "secret-token",
		"--api-url", server.URL,
	)
	require.NoError(t, err)

	assert.Equal(t, []string{"a.tar.gz", "b.gz"}, api.uploadedNames())
	assert.Contains(t, output, "Attaching file")
	assert.Contains(t, output, "Attached 2 artifact(s) to release v1.2.3")
}

func TestPublishCliReadsEnvVars(t *testing.T) {
	api := &fakeGitHubApi{}
	server := httptest.NewServer(api.handler(t))
	defer server.Close()

	repoDir, outPath := setupRepoAndArtifacts(t, "v1.2.3", "a.gz")

	t.Setenv(envVarRepo, "gardener/component-cli")
	t.Setenv(envVarRepoDir, repoDir)
	t.Setenv(envVarOutPath, outPath)
	t.Setenv(envVarGithubToken, "secret-token")

	_, err := runPublishCommand(t, "--api-url", server.URL)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.gz"}, api.uploadedNames())
}

func TestPublishCliReleaseNotFound(t *testing.T) {
	api := &fakeGitHubApi{}
	server := httptest.NewServer(api.handler(t))
	defer server.Close()

	repoDir, outPath := setupRepoAndArtifacts(t, "v1.2.3\n", "a.gz")

	_, err := runPublishCommand(t,
		"--repo", "gardener/component-cli",
		"--repo-dir", repoDir,
		"--out-path", outPath,
		"--github-oauth-token", "secret-token",
		"--api-url", server.URL,
	)
	require.Error(t, err)
	assert.Equal(t, releaseNotFound, errorCode(t, err))
	assert.Empty(t, api.uploadedNames())
}

func TestPublishCliMissingRequiredOptions(t *testing.T) {
	t.Setenv(envVarRepo, "")
	t.Setenv(envVarRepoDir, "")
	t.Setenv(envVarOutPath, "")

	cases := []struct {
		name     string
		args     []string
		expected string
	}{
		{"missing repo", []string{"--repo-dir", "x", "--out-path", "y"}, envVarRepo},
		{"missing repo dir", []string{"--repo", "a/b", "--out-path", "y"}, envVarRepoDir},
		{"missing out path", []string{"--repo", "a/b", "--repo-dir", "x"}, envVarOutPath},
		{"invalid source", []string{"--repo", "a/b", "--repo-dir", "x", "--out-path", "y", "--source", "svn"}, "Invalid --source value"},
		{"invalid checksum algo", []string{"--repo", "a/b", "--repo-dir", "x", "--out-path", "y", "--checksum-algo", "md5"}, "not supported"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := runPublishCommand(t, tc.args...)
			require.Error(t, err)
			assert.Equal(t, configurationError, errorCode(t, err))
			assert.Contains(t, err.Error(), tc.expected)
		})
	}
}

func TestPublishCliInvalidLogLevel(t *testing.T) {
	_, err := runPublishCommand(t, "--log-level", "loud")
	assert.Error(t, err)
}

func TestPublishCliReadsDotEnv(t *testing.T) {
	api := &fakeGitHubApi{}
	server := httptest.NewServer(api.handler(t))
	defer server.Close()

	repoDir, outPath := setupRepoAndArtifacts(t, "v1.2.3", "a.gz")

	// Set and then unset, so the test restores whatever the shell had
	for _, key := range []string{envVarRepo, envVarGithubToken} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	workDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(workDir, credentials.DotEnvFile), []byte(fmt.Sprintf("%s=gardener/component-cli\n%s=dotenv-token\n", envVarRepo, envVarGithubToken)), 0600))

	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(workDir))
	defer os.Chdir(cwd)

	require.NoError(t, credentials.LoadDotEnv(""))

	_, err = runPublishCommand(t, "--repo-dir", repoDir, "--out-path", outPath, "--api-url", server.URL)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.gz"}, api.uploadedNames())
}

func TestPublishCliLogsFailuresToErrWriter(t *testing.T) {
	t.Setenv(envVarRepo, "")

	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)

	app := CreatePublishCli("test", stdout, stderr)
	app.Action = runPublishAndLogErrors
	err := app.Run([]string{"publish", "--repo-dir", "x", "--out-path", "y"})
	require.Error(t, err)

	logBufferContentsLineByLine(t, stdout, "stdout")
	logBufferContentsLineByLine(t, stderr, "stderr")

	assert.NotContains(t, stdout.String(), envVarRepo)
	assert.Contains(t, stderr.String(), "The publish configuration is missing or malformed")
	assert.Contains(t, stderr.String(), envVarRepo)
}
