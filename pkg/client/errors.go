package client

import (
	"errors"
	"fmt"
)

// Common errors returned by the client.
var (
	// ErrNotFound is returned when the polls endpoint responds with 404.
	ErrNotFound = errors.New("polls endpoint not found")

	// ErrInvalidPageRequest is returned for a negative skip or a non-positive limit.
	ErrInvalidPageRequest = errors.New("invalid page request")
)

// fallbackValidationDetail is used when a 400 registration response has no body.
const fallbackValidationDetail = "username already registered"

// ErrorKind classifies errors returned by the client.
type ErrorKind string

const (
	// KindNotFound represents a 404 from the polls endpoint.
	KindNotFound ErrorKind = "not_found"

	// KindValidation represents a 400 from the register endpoint.
	KindValidation ErrorKind = "validation"

	// KindHTTP represents any other non-2xx response.
	KindHTTP ErrorKind = "http"

	// KindTransport represents a failure before a response was obtained.
	KindTransport ErrorKind = "transport"

	// KindUnknown is anything else (decode failures, bad arguments).
	KindUnknown ErrorKind = "unknown"
)

// HTTPError is a non-2xx response that has no more specific kind.
type HTTPError struct {
	StatusCode int
	Body       []byte
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	if len(e.Body) == 0 {
		return fmt.Sprintf("http error (status %d)", e.StatusCode)
	}
	return fmt.Sprintf("http error (status %d): %s", e.StatusCode, e.Body)
}

// ValidationError is a registration rejected by the server with 400.
type ValidationError struct {
	// Detail is the server-provided reason, or a fallback when the body was empty.
	Detail string

	// Body is the raw response body.
	Body []byte
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("registration failed: %s", e.Detail)
}

// TransportError wraps a network failure (DNS, connection refused, timeout).
type TransportError struct {
	Err error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error: %v", e.Err)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// KindOf returns the classification of err.
func KindOf(err error) ErrorKind {
	var (
		httpErr       *HTTPError
		validationErr *ValidationError
		transportErr  *TransportError
	)

	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.As(err, &validationErr):
		return KindValidation
	case errors.As(err, &httpErr):
		return KindHTTP
	case errors.As(err, &transportErr):
		return KindTransport
	default:
		return KindUnknown
	}
}
