package transport

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPError represents a non-2xx response.
type HTTPError struct {
	StatusCode int
	Body       string
	Path       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("transport: %s returned status %d: %s", e.Path, e.StatusCode, e.Body)
}

// NetworkError represents a failure to reach the server.
type NetworkError struct {
	Path string
	Err  error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("transport: request %s failed: %v", e.Path, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// DecodeError represents a response body that is not valid JSON.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("transport: decode %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Retryable reports whether err is worth another attempt: network failures,
// 429 and 5xx responses.
func Retryable(err error) bool {
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return true
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == http.StatusTooManyRequests || httpErr.StatusCode >= 500
	}
	return false
}
