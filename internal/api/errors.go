package api

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for caller-checkable conditions.
var (
	ErrInvalidBaseURL = errors.New("api: invalid base URL")
	ErrNotFound       = errors.New("api: not found")
	ErrEmptyID        = errors.New("api: empty contact id")
)

// StatusError reports a response outside the 2xx range.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("api: %s %s: %d %s", e.Method, e.Path, e.StatusCode, http.StatusText(e.StatusCode))
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// Is makes errors.Is(err, ErrNotFound) true for 404 responses.
func (e *StatusError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}
