package api

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNoBaseURL indicates the client was constructed without a base URL.
	ErrNoBaseURL = errors.New("api.no_base_url")

	// ErrDecodeResponse indicates the server replied with a body the
	// client could not decode.
	ErrDecodeResponse = errors.New("api.decode_response_failed")
)

// Error describes a failed call to the authentication API.
//
// Status 0 means the request never reached the server (network
// unreachable, DNS failure, timeout). Any other value is the HTTP
// status the server answered with, and Message carries the
// server-provided error text when one was present.
type Error struct {
	Status  int
	Message string
	cause   error
}

func (e *Error) Error() string {
	switch {
	case e.Status == 0 && e.cause != nil:
		return fmt.Sprintf("api: network error: %v", e.cause)
	case e.Message != "":
		return fmt.Sprintf("api: status %d: %s", e.Status, e.Message)
	default:
		return fmt.Sprintf("api: status %d", e.Status)
	}
}

func (e *Error) Unwrap() error { return e.cause }

// IsNetwork reports whether the request failed before reaching the server.
func (e *Error) IsNetwork() bool { return e.Status == 0 }

// IsServer reports whether the server failed with a 5xx status.
func (e *Error) IsServer() bool { return e.Status >= http.StatusInternalServerError }

// NetworkError wraps a transport-level failure as a status-0 Error.
func NetworkError(cause error) *Error {
	return &Error{Status: 0, cause: cause}
}

// StatusOf extracts the HTTP status from err, or -1 when err is not an
// API error. Status 0 still means a network-level failure.
func StatusOf(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return -1
}
