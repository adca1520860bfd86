package services

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies a failed signals API call
type ErrorKind string

const (
	KindConfiguration ErrorKind = "configuration" // base URL unusable, no request was made
	KindNetwork       ErrorKind = "network"       // transport failure or unreadable response
	KindHTTP          ErrorKind = "http"          // non-2xx without an error envelope
	KindLogical       ErrorKind = "logical"       // envelope with success=false
	KindValidation    ErrorKind = "validation"    // input rejected before a request
	KindUnknown       ErrorKind = "unknown"
)

// Error codes produced on the client side
const (
	CodeNetworkError    = "NETWORK_ERROR"
	CodeUnknownError    = "UNKNOWN_ERROR"
	CodeCircuitOpen     = "CIRCUIT_OPEN"
	CodeUnexpectedShape = "UNEXPECTED_SHAPE"
	CodeEmptyPayload    = "EMPTY_PAYLOAD"
	CodeInvalidConfig   = "INVALID_CONFIG"
	CodeInvalidInput    = "INVALID_INPUT"
	CodeNotFound        = "NOT_FOUND"
)

// APIError is the single error type returned by every signals API operation.
// Status is the HTTP status of the response, or 0 when no response was obtained.
type APIError struct {
	Kind    ErrorKind      `json:"kind"`
	Message string         `json:"message"`
	Status  int            `json:"status"`
	Code    string         `json:"code,omitempty"`
	Details map[string]any `json:"details,omitempty"`

	err error
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s error (%s): %s", e.Kind, e.Code, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Kind, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.err
}

// Temporary reports whether repeating the same request could succeed
func (e *APIError) Temporary() bool {
	switch e.Kind {
	case KindNetwork:
		return e.Code != CodeCircuitOpen
	case KindHTTP, KindLogical:
		return e.Status == http.StatusRequestTimeout ||
			e.Status == http.StatusTooManyRequests ||
			e.Status >= http.StatusInternalServerError
	default:
		return false
	}
}

// AsAPIError extracts an *APIError from an error chain
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsNotFound reports whether the error means the requested resource does not exist
func IsNotFound(err error) bool {
	apiErr, ok := AsAPIError(err)
	if !ok {
		return false
	}
	return apiErr.Status == http.StatusNotFound || apiErr.Code == CodeNotFound
}

// NewNetworkError reports a failure to obtain a response, such as a cancelled request
func NewNetworkError(err error) *APIError {
	return &APIError{Kind: KindNetwork, Message: err.Error(), Code: CodeNetworkError, err: err}
}

func newUnknownError(err error) *APIError {
	msg := "an unknown error occurred"
	if err != nil {
		msg = err.Error()
	}
	return &APIError{Kind: KindUnknown, Message: msg, Code: CodeUnknownError, err: err}
}

func newConfigurationError(err error) *APIError {
	return &APIError{Kind: KindConfiguration, Message: err.Error(), Code: CodeInvalidConfig, err: err}
}

func newValidationError(format string, args ...any) *APIError {
	return &APIError{Kind: KindValidation, Message: fmt.Sprintf(format, args...), Code: CodeInvalidInput}
}
