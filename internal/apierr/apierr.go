// Package apierr defines the error types shared by the source clients.
package apierr

import (
	"errors"
	"fmt"
)

// StatusError is returned when a source responds with a non-2xx status.
// Body carries the best-effort parsed error payload, if any.
type StatusError struct {
	Source     string
	StatusCode int
	Body       any
}

func (e *StatusError) Error() string {
	if e.Body != nil {
		return fmt.Sprintf("%s returned status %d: %v", e.Source, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("%s returned status %d", e.Source, e.StatusCode)
}

// NewStatusError creates a StatusError for the given source and status.
func NewStatusError(source string, status int, body any) *StatusError {
	return &StatusError{Source: source, StatusCode: status, Body: body}
}

// IsStatusError reports whether err wraps a StatusError.
func IsStatusError(err error) bool {
	var se *StatusError
	return errors.As(err, &se)
}

// StatusCode extracts the HTTP status from err, or 0 if it carries none.
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}

// ParseError is returned when a whole response body cannot be decoded.
// It is distinct from StatusError so callers can tell a malformed payload
// apart from a transport failure.
type ParseError struct {
	Source string
	Cause  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s response parsing failed: %v", e.Source, e.Cause)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// NewParseError creates a ParseError for the given source.
func NewParseError(source string, cause error) *ParseError {
	return &ParseError{Source: source, Cause: cause}
}

// IsParseError reports whether err wraps a ParseError.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}
