package gateway

import (
	"errors"
	"fmt"
	"net/http"
)

// StatusError is a non-2xx response from the document store, carrying
// the backend's own message and error type when it provided one.
type StatusError struct {
	// Code is the HTTP status code of the response.
	Code int

	// Type is the backend's machine-readable error type, if any.
	Type string

	// Message is the backend's human-readable message, if any.
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("gateway error (%d %s): %s", e.Code, e.Type, e.Message)
	}
	return fmt.Sprintf("gateway error (%d %s)", e.Code, e.Type)
}

// IsConflict reports whether err is a duplicate-ID rejection. For
// completion records this is the intended concurrency-control outcome,
// not a failure: the deterministic ID already exists, so the write has
// effectively already happened.
func IsConflict(err error) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.Code == http.StatusConflict
}

// IsUnauthorized reports whether err is an authentication failure
// (missing, expired, or revoked session). Callers treat this as
// "session expired" and fall back to the unauthenticated state.
func IsUnauthorized(err error) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.Code == http.StatusUnauthorized
}

// IsNotFound reports whether err is a missing-document response.
func IsNotFound(err error) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.Code == http.StatusNotFound
}
