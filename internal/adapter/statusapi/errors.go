package statusapi

import (
	"errors"
	"fmt"
	"time"

	"github.com/thushan/runstatus/internal/core/domain"
)

// ErrNotFound is returned (wrapped) when a direct lookup hits HTTP 404
var ErrNotFound = domain.ErrNotFound

// ErrResponseTooLarge is returned (wrapped) when a body exceeds the size cap
var ErrResponseTooLarge = errors.New("response body too large")

// RequestError wraps a failed status service call with its context
type RequestError struct {
	Err        error
	Resource   string
	Operation  string
	URL        string
	StatusCode int
	Latency    time.Duration
}

func (e *RequestError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s %s failed for %s (status: %d, latency: %v): %v",
			e.Resource, e.Operation, e.URL, e.StatusCode, e.Latency, e.Err)
	}
	return fmt.Sprintf("%s %s failed for %s (latency: %v): %v",
		e.Resource, e.Operation, e.URL, e.Latency, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

func newRequestError(resource, operation, url string, statusCode int, latency time.Duration, err error) *RequestError {
	return &RequestError{
		Resource:   resource,
		Operation:  operation,
		URL:        url,
		StatusCode: statusCode,
		Latency:    latency,
		Err:        err,
	}
}

// ParseError indicates the response body could not be understood
type ParseError struct {
	Err    error
	Format string
	Data   []byte
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse %s response: %v", e.Format, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// NetworkError indicates a network-level failure
type NetworkError struct {
	Err error
	URL string
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error for %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err is a lookup miss
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsNetworkError reports whether the service could not be reached at all,
// as opposed to answering with an error status or garbage
func IsNetworkError(err error) bool {
	var networkErr *NetworkError
	return errors.As(err, &networkErr)
}

// StatusCode extracts the HTTP status from err, or 0 if there wasn't one
func StatusCode(err error) int {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.StatusCode
	}
	return 0
}
