package main

import (
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewError(t *testing.T) {
	err := newError(configurationError, "My error details")
	assert.Equal(t, "100 - My error details", err.Error())
	assert.Nil(t, err.Unwrap())
	assert.Contains(t, err.stackTrace(), "My error details")
}

func TestWrapErrorKeepsCause(t *testing.T) {
	err := wrapErrorWithCode(fileAccessError, os.ErrNotExist)
	assert.Equal(t, fileAccessError, err.errorCode)
	assert.True(t, errors.Is(err, os.ErrNotExist))

	var pubErr *publishError
	assert.True(t, errors.As(error(err), &pubErr))
	assert.Equal(t, -1, wrapError(os.ErrNotExist).errorCode)
}

func TestGetErrorMessage(t *testing.T) {
	for _, code := range []int{configurationError, fileAccessError, invalidTokenOrAccessDenied, releaseNotFound, uploadFailed, errorWhileComputingChecksum} {
		message := getErrorMessage(code, "the details")
		assert.Contains(t, message, "the details")
	}
	assert.Empty(t, getErrorMessage(-1, "the details"))
}
