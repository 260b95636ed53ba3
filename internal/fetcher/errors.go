package fetcher

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrClientStatus is returned for 4xx responses. It is never retried.
	ErrClientStatus = errors.New("client error status")

	// ErrServerStatus is returned for 5xx responses.
	ErrServerStatus = errors.New("server error status")

	// ErrUnexpectedStatus is returned for other non-2xx responses.
	ErrUnexpectedStatus = errors.New("unexpected status")
)

// StatusError reports a non-successful HTTP response.
type StatusError struct {
	URL        string
	StatusCode int
}

// Error returns the status line and URL.
func (e *StatusError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.StatusCode, http.StatusText(e.StatusCode), e.URL)
}

// Unwrap classifies the status code.
func (e *StatusError) Unwrap() error {
	switch {
	case e.StatusCode >= 500:
		return ErrServerStatus
	case e.StatusCode >= 400:
		return ErrClientStatus
	default:
		return ErrUnexpectedStatus
	}
}
