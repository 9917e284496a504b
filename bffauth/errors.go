package bffauth

import (
	"errors"
	"fmt"
)

var (
	// The callback, the stored credentials, or the current auth state is
	// structurally wrong, or the backend rejected it past the retry ceiling.
	// Not retryable on the same path; a fresh sign-in is needed for
	// completion failures.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Refresh was attempted and the backend (or its response shape)
	// definitively indicated the session cannot be extended. Only a fresh
	// sign-in recovers from this.
	ErrSessionExpired = errors.New("session expired and cannot be refreshed")

	// The user aborted the interactive portion of the flow.
	ErrUserCancelled = errors.New("authentication cancelled by user")

	ErrInvalidConfig = errors.New("invalid client configuration")
)

// NetworkError indicates a transport-level failure: the request never
// produced an HTTP response. The session may still be valid; callers can
// retry later.
type NetworkError struct {
	Detail string
	Err    error
}

func (e *NetworkError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("network request failed (%s): %v", e.Detail, e.Err)
	}
	return fmt.Sprintf("network request failed (%s)", e.Detail)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// StorageError indicates the credentials store or cookie manager failed to
// persist or clear. Retryable at the storage layer.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("credential storage %s failed: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// APIError represents a non-2xx, non-401 response from a generic API call.
type APIError struct {
	StatusCode int
	Name       string
	Message    string
}

func (ae *APIError) Error() string {
	if ae.StatusCode > 0 {
		if ae.Name != "" && ae.Message != "" {
			return fmt.Sprintf("API request failed (HTTP %d): %s: %s", ae.StatusCode, ae.Name, ae.Message)
		} else if ae.Name != "" {
			return fmt.Sprintf("API request failed (HTTP %d): %s", ae.StatusCode, ae.Name)
		}
		return fmt.Sprintf("API request failed (HTTP %d)", ae.StatusCode)
	}
	return "API request failed"
}

// ErrorBody is the JSON error shape returned by the backend on failed
// requests.
type ErrorBody struct {
	Name    string `json:"error"`
	Message string `json:"message,omitempty"`
}

func (eb *ErrorBody) APIError(statusCode int) error {
	return &APIError{
		StatusCode: statusCode,
		Name:       eb.Name,
		Message:    eb.Message,
	}
}

// Recoverable reports whether the caller can reasonably retry after err
// without restarting the sign-in flow. Network, storage, and generic API
// failures are recoverable; credential and session-expiry failures are not.
func Recoverable(err error) bool {
	if errors.Is(err, ErrSessionExpired) || errors.Is(err, ErrInvalidCredentials) {
		return false
	}
	return true
}
