package api

import (
	"errors"
	"fmt"
)

var (
	// ErrUnavailable indicates the backend could not be reached.
	ErrUnavailable = errors.New("dpr backend unavailable")

	// ErrTimeout indicates the request exceeded the configured timeout.
	ErrTimeout = errors.New("dpr request timed out")

	// ErrNotFound indicates the backend has no record with the requested id.
	ErrNotFound = errors.New("dpr record not found")

	// ErrRejected indicates the backend refused the request (4xx other than 404).
	ErrRejected = errors.New("dpr request rejected")

	// ErrInvalidResponse indicates a response body that could not be decoded.
	ErrInvalidResponse = errors.New("invalid dpr response")

	// ErrRetryExhausted indicates all retry attempts failed with server errors.
	ErrRetryExhausted = errors.New("dpr retry attempts exhausted")
)

// StatusError carries the HTTP status and backend message of a failed call.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend returned status %d", e.Code)
	}
	return fmt.Sprintf("backend returned status %d: %s", e.Code, e.Message)
}
