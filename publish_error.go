package main

import (
	"fmt"

	"github.com/gruntwork-io/go-commons/errors"
)

// We define a custom error type so that we can provide friendlier error messages
type publishError struct {
	errorCode int    // an error code is an arbitrary int that allows for strongly typed identification of specific errors
	details   string // the output of the underlying error message, if any
	err       error  // the underlying golang error, if any
	stack     error  // err (or details) annotated with the stack trace at construction time
}

// Implement the golang Error interface
func (e *publishError) Error() string {
	return fmt.Sprintf("%d - %s", e.errorCode, e.details)
}

func (e *publishError) Unwrap() error {
	return e.err
}

func newError(errorCode int, details string) *publishError {
	return &publishError{
		errorCode: errorCode,
		details:   details,
		err:       nil,
		stack:     errors.WithStackTrace(fmt.Errorf("%s", details)),
	}
}

// wrapErrorWithCode attaches an error code to err, keeping err reachable through errors.Is / errors.As
func wrapErrorWithCode(errorCode int, err error) *publishError {
	return &publishError{
		errorCode: errorCode,
		details:   err.Error(),
		err:       err,
		stack:     errors.WithStackTrace(err),
	}
}

func wrapError(err error) *publishError {
	return wrapErrorWithCode(-1, err)
}

// stackTrace renders the error with the stack captured when it was created
func (e *publishError) stackTrace() string {
	return errors.PrintErrorWithStackTrace(e.stack)
}

func getErrorMessage(errorCode int, errorDetails string) string {
	switch errorCode {
	case configurationError:
		return fmt.Sprintf(`
The publish configuration is missing or malformed. Check the --repo, --repo-dir and --out-path flags (or the
SOURCE_GITHUB_REPO_OWNER_AND_NAME, MAIN_REPO_DIR and OUT_PATH env vars) and the credentials profile.

Underlying error message:
%s
`, errorDetails)
	case fileAccessError:
		return fmt.Sprintf(`
A file required for publishing could not be read. The VERSION file must exist at the root of --repo-dir and every
artifact under --out-path must be readable.

Underlying error message:
%s
`, errorDetails)
	case invalidTokenOrAccessDenied:
		return fmt.Sprintf(`
Received an HTTP 401/403 Response when attempting to query the release.

This means that either your token is invalid, or that the token is valid but does not grant write access to the
releases of the repo.

Underlying error message:
%s
`, errorDetails)
	case releaseNotFound:
		return fmt.Sprintf(`
No release exists whose tag matches the contents of the VERSION file. The tag is used exactly as read, so a trailing
newline in VERSION is part of the tag. Create the release first, or pass --trim-version.

Underlying error message:
%s
`, errorDetails)
	case uploadFailed:
		return fmt.Sprintf(`
Uploading a release asset failed. Assets uploaded before this one remain attached to the release; the remaining
artifacts were not uploaded.

Underlying error message:
%s
`, errorDetails)
	case errorWhileComputingChecksum:
		return fmt.Sprintf(`
An artifact could be opened but not read while computing its --checksum-algo digest. Nothing was uploaded for it.

Underlying error message:
%s
`, errorDetails)
	}

	return ""
}
