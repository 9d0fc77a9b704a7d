package source

import (
	"fmt"
	"strings"
)

// ParseSourceType converts string to SourceType
func ParseSourceType(s string) (SourceType, error) {
	switch strings.ToLower(s) {
	case "github", "":
		return TypeGitHub, nil
	case "gitlab":
		return TypeGitLab, nil
	default:
		return "", fmt.Errorf("unknown source type: %s (valid: github, gitlab)", s)
	}
}

// NewSource creates a Source implementation based on type
func NewSource(sourceType SourceType, config Config) (Source, error) {
	switch sourceType {
	case TypeGitHub:
		if NewGitHubSource == nil {
			return nil, fmt.Errorf("source type %s is not registered", sourceType)
		}
		return NewGitHubSource(config), nil
	case TypeGitLab:
		if NewGitLabSource == nil {
			return nil, fmt.Errorf("source type %s is not registered", sourceType)
		}
		return NewGitLabSource(config), nil
	default:
		return nil, fmt.Errorf("unsupported source type: %s", sourceType)
	}
}

// NewGitHubSource is set by the github package on import
var NewGitHubSource func(config Config) Source

// NewGitLabSource is set by the gitlab package on import
var NewGitLabSource func(config Config) Source
