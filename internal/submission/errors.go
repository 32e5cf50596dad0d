package submission

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means no submission exists for the given uuid.
	ErrNotFound = errors.New("no submission exists with this uuid")

	// ErrAccessDenied means the configured api key was rejected.
	ErrAccessDenied = errors.New("access denied with the configured api key")

	// ErrNoAttachments means the submission carries no files; a submission
	// without files is not worth archiving.
	ErrNoAttachments = errors.New("submission contains no files")
)

// RemoteError carries an unexpected non-200 response from the intake API.
type RemoteError struct {
	StatusCode int
	Body       string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("unexpected response from intake api: status %d: %s", e.StatusCode, e.Body)
}
