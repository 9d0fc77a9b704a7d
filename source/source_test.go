package source

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSourceType(t *testing.T) {
	t.Parallel()

	cases := []struct {
		input        string
		expectedType SourceType
		description  string
	}{
		{"github", TypeGitHub, "lowercase github"},
		{"GitHub", TypeGitHub, "mixed case GitHub"},
		{"GITHUB", TypeGitHub, "uppercase GITHUB"},
		{"gitlab", TypeGitLab, "lowercase gitlab"},
		{"GitLab", TypeGitLab, "mixed case GitLab"},
		{"", TypeGitHub, "empty string defaults to github"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.description, func(t *testing.T) {
			parsed, err := ParseSourceType(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.expectedType, parsed)
		})
	}
}

func TestParseSourceTypeInvalid(t *testing.T) {
	t.Parallel()

	invalidTypes := []string{"unknown", "bitbucket", "auto", "hg"}

	for _, invalid := range invalidTypes {
		invalid := invalid
		t.Run(invalid, func(t *testing.T) {
			_, err := ParseSourceType(invalid)
			assert.Error(t, err)
			assert.Contains(t, err.Error(), "unknown source type")
		})
	}
}

func TestNewSourceUnsupportedType(t *testing.T) {
	t.Parallel()

	_, err := NewSource("unsupported", Config{})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported source type")
}

func TestRepoFullName(t *testing.T) {
	t.Parallel()

	repo := Repo{Owner: "gardener", Name: "component-cli", Type: TypeGitHub}
	assert.Equal(t, "gardener/component-cli", repo.FullName())
}

func TestSentinelErrorsSurviveWrapping(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("no release for tag v1.2.3 in o/r: %w", ErrReleaseNotFound)
	assert.True(t, errors.Is(err, ErrReleaseNotFound))
	assert.False(t, errors.Is(err, ErrUnauthorized))
}
