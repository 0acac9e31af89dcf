package domain

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	// Validation failures wrap this error and are never queued.
	ErrInvalidInput = errors.New("invalid input")

	// ErrSyncInProgress indicates a reconciliation pass is already running.
	ErrSyncInProgress = errors.New("sync in progress")

	// ErrOffline indicates the remote backend could not be reached.
	ErrOffline = errors.New("backend unreachable")

	// ErrStoreClosed indicates the local store has been closed.
	ErrStoreClosed = errors.New("local store closed")
)

// RemoteError is a non-2xx response from the backend API.
type RemoteError struct {
	StatusCode int
	Message    string
	URL        string
}

func (e *RemoteError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("remote error %d (URL: %s)", e.StatusCode, e.URL)
	}
	return fmt.Sprintf("remote error %d: %s (URL: %s)", e.StatusCode, e.Message, e.URL)
}

// IsNotFound checks if the error is a 404 from the backend.
func IsNotFound(err error) bool {
	var remoteErr *RemoteError
	if errors.As(err, &remoteErr) {
		return remoteErr.StatusCode == http.StatusNotFound
	}
	return errors.Is(err, ErrNotFound)
}

// IsRejection reports whether the backend refused the request outright.
// A rejection will not succeed by retrying: any 4xx except request timeout
// and rate limiting. Transport failures and 5xx responses are not rejections.
func IsRejection(err error) bool {
	var remoteErr *RemoteError
	if !errors.As(err, &remoteErr) {
		return false
	}
	switch remoteErr.StatusCode {
	case http.StatusRequestTimeout, http.StatusTooManyRequests:
		return false
	}
	return remoteErr.StatusCode >= 400 && remoteErr.StatusCode < 500
}

// ValidationError lists invalid fields of a submission, keyed by JSON
// field path. It wraps ErrInvalidInput.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return fmt.Sprintf("%s: %s", ErrInvalidInput, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}
