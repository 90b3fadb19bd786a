package client

import (
	"errors"
	"fmt"
)

// ErrNetworkOrServer matches every failure of a backend call: a non-2xx
// status or a transport error.
var ErrNetworkOrServer = errors.New("network or server error")

// APIError describes a failed backend call. StatusCode is zero when the
// request never produced a response.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	// Detail is the backend's `detail` field, empty when absent.
	Detail string
	Err    error
}

// Error returns the user-facing message.
func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	if e.Err != nil {
		return fmt.Sprintf("API request failed: %v", e.Err)
	}
	return fmt.Sprintf("API request failed: status %d", e.StatusCode)
}

// Unwrap returns the transport error, if any.
func (e *APIError) Unwrap() error {
	return e.Err
}

// Is makes every APIError match ErrNetworkOrServer.
func (e *APIError) Is(target error) bool {
	return target == ErrNetworkOrServer
}

// StatusCode extracts the HTTP status from err, or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
