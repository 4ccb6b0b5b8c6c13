package models

import "fmt"

// AuthenticationError is returned when a webhook delivery fails signature verification.
type AuthenticationError struct {
	Reason string
	Cause  error
}

func (e *AuthenticationError) Error() string {
	if e.Cause == nil {
		return "authentication failed: " + e.Reason
	}
	return fmt.Sprintf("authentication failed: %s: %v", e.Reason, e.Cause)
}

func (e *AuthenticationError) Unwrap() error {
	return e.Cause
}

// ValidationError is returned when a request is rejected before any processing starts.
type ValidationError struct {
	Message string
	Cause   error
}

// NewValidationError creates a ValidationError with the given message.
func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

func (e *ValidationError) Error() string {
	if e.Cause == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Cause)
}

func (e *ValidationError) Unwrap() error {
	return e.Cause
}
