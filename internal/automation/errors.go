package automation

import (
	"fmt"
	"net/http"
)

// RemoteAPIError describes a failed call against the issue tracker.
type RemoteAPIError struct {
	Op         string
	StatusCode int
	Cause      error
}

func (e *RemoteAPIError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s: %v", e.Op, e.Cause)
	}
	return fmt.Sprintf("%s: status %d: %v", e.Op, e.StatusCode, e.Cause)
}

func (e *RemoteAPIError) Unwrap() error {
	return e.Cause
}

// IsUnprocessable reports whether the tracker rejected the request as unprocessable.
// For label additions this means the label does not exist in the repository.
func (e *RemoteAPIError) IsUnprocessable() bool {
	return e.StatusCode == http.StatusUnprocessableEntity
}

// ProcessingError wraps a failure of the issue processor.
// It is the only error kind that drives the failed-state transition.
type ProcessingError struct {
	IssueNumber int
	Cause       error
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("failed to process issue #%d: %v", e.IssueNumber, e.Cause)
}

func (e *ProcessingError) Unwrap() error {
	return e.Cause
}
