// Package errors provides standardized error handling for slash command invocations.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeMalformedRequest ErrorCode = "MALFORMED_REQUEST"
	ErrCodeUnauthorized     ErrorCode = "UNAUTHORIZED"

	ErrCodeProviderNotFound ErrorCode = "PROVIDER_NOT_FOUND"
	ErrCodeProviderFailed   ErrorCode = "PROVIDER_FAILED"
	ErrCodeProviderTimeout  ErrorCode = "PROVIDER_TIMEOUT"
	ErrCodeInvalidPayload   ErrorCode = "UPSTREAM_INVALID_PAYLOAD"
	ErrCodeNoContent        ErrorCode = "UPSTREAM_NO_CONTENT"

	ErrCodeEncodingFailed ErrorCode = "RESPONSE_ENCODING_FAILED"
	ErrCodeInternal       ErrorCode = "INTERNAL_ERROR"
)

// Sentinel errors for errors.Is checks across packages.
var (
	ErrMalformedRequest = stderrors.New("MALFORMED_REQUEST")
	ErrUnauthorized     = stderrors.New("UNAUTHORIZED")
	ErrProviderTimeout  = stderrors.New("PROVIDER_TIMEOUT")
	ErrInvalidPayload   = stderrors.New("UPSTREAM_INVALID_PAYLOAD")
	ErrNoContent        = stderrors.New("UPSTREAM_NO_CONTENT")
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause to errors.Is / errors.As.
func (e *StandardError) Unwrap() error {
	return e.cause
}

// ==========================
// 2. Error Constructors
// ==========================

// NewMalformedRequestError is returned when token or command is absent.
func NewMalformedRequestError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeMalformedRequest,
		Message:   "Required field missing",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     ErrMalformedRequest,
	}
}

// NewUnauthorizedError is returned when the token does not match the shared secret.
func NewUnauthorizedError() *StandardError {
	return &StandardError{
		Code:      ErrCodeUnauthorized,
		Message:   "Token mismatch",
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     ErrUnauthorized,
	}
}

// NewProviderNotFoundError reports a provider name missing from the registry.
func NewProviderNotFoundError(name string) *StandardError {
	return &StandardError{
		Code:      ErrCodeProviderNotFound,
		Message:   "Provider not registered",
		Details:   fmt.Sprintf("provider: %s", name),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewProviderError classifies a provider failure. Timeouts, invalid upstream
// payloads and empty results keep their own codes.
func NewProviderError(provider string, err error) *StandardError {
	stdErr := &StandardError{
		Code:      ErrCodeProviderFailed,
		Message:   "Provider failed",
		Details:   fmt.Sprintf("provider: %s, error: %s", provider, err.Error()),
		Retryable: true,
		Metadata:  map[string]interface{}{"provider": provider},
		Timestamp: time.Now().UTC(),
		cause:     err,
	}

	switch {
	case stderrors.Is(err, ErrProviderTimeout):
		stdErr.Code = ErrCodeProviderTimeout
		stdErr.Message = "Provider timed out"
	case stderrors.Is(err, ErrInvalidPayload):
		stdErr.Code = ErrCodeInvalidPayload
		stdErr.Message = "Provider returned an invalid payload"
		stdErr.Retryable = false
	case stderrors.Is(err, ErrNoContent):
		stdErr.Code = ErrCodeNoContent
		stdErr.Message = "Provider returned no content"
		stdErr.Retryable = false
	}

	return stdErr
}

// NewEncodingError is returned when the reply cannot be serialized.
func NewEncodingError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeEncodingFailed,
		Message:   "Failed to encode response",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// ==========================
// 3. HTTP Mapping
// ==========================

// HTTPStatusMapping maps error codes to the status written at the HTTP boundary.
// A token mismatch answers 409 Conflict rather than 401/403; slash command
// integrations built against this service expect that status.
var HTTPStatusMapping = map[ErrorCode]int{
	ErrCodeMalformedRequest: http.StatusBadRequest,
	ErrCodeUnauthorized:     http.StatusConflict,
	ErrCodeProviderNotFound: http.StatusInternalServerError,
	ErrCodeProviderFailed:   http.StatusBadGateway,
	ErrCodeProviderTimeout:  http.StatusGatewayTimeout,
	ErrCodeInvalidPayload:   http.StatusBadGateway,
	ErrCodeNoContent:        http.StatusBadGateway,
	ErrCodeEncodingFailed:   http.StatusInternalServerError,
	ErrCodeInternal:         http.StatusInternalServerError,
}

// HTTPStatus returns the status code for an error code.
func HTTPStatus(code ErrorCode) int {
	if status, ok := HTTPStatusMapping[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// IsClientError reports whether the code is caused by the caller.
func IsClientError(code ErrorCode) bool {
	return HTTPStatus(code) < http.StatusInternalServerError
}

// GetErrorCategory groups codes for logging and metrics labels.
func GetErrorCategory(code ErrorCode) string {
	switch code {
	case ErrCodeMalformedRequest, ErrCodeUnauthorized:
		return "REQUEST"
	case ErrCodeProviderFailed, ErrCodeProviderTimeout, ErrCodeInvalidPayload, ErrCodeNoContent:
		return "UPSTREAM"
	default:
		return "INTERNAL"
	}
}

// Normalize ensures we always have a StandardError.
func Normalize(err error) *StandardError {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}
