package payment

import (
	"fmt"
	"net/http"
)

// Error codes
const (
	CodeInvalidData        = "INVALID_PAYMENT_DATA"
	CodeRateLimited        = "RATE_LIMITED"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	CodeVerificationFailed = "VERIFICATION_FAILED"
	CodeUnknown            = "UNKNOWN"
)

// Error is a tagged payment error. Retryable is a hint to the calling UI
// about whether presenting a retry action makes sense.
type Error struct {
	Code      string         `json:"code"`
	Message   string         `json:"message"`
	Retryable bool           `json:"retryable"`
	Details   map[string]any `json:"details,omitempty"`
}

// Error implements the error interface
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewError creates a payment error
func NewError(code, message string, retryable bool) *Error {
	return &Error{Code: code, Message: message, Retryable: retryable}
}

// WithDetails attaches structured details to the error
func (e *Error) WithDetails(details map[string]any) *Error {
	e.Details = details
	return e
}

// FromAPIError maps a transport-layer failure to a payment error.
// Rate limiting and server-side failures are retryable; client-side
// rejections are not.
func FromAPIError(statusCode int, message string) *Error {
	if message == "" {
		message = http.StatusText(statusCode)
	}

	switch {
	case statusCode == http.StatusTooManyRequests:
		return NewError(CodeRateLimited, message, true)
	case statusCode >= 500:
		return NewError(CodeServiceUnavailable, message, true)
	case statusCode >= 400:
		return NewError(CodeInvalidData, message, false)
	default:
		return NewError(CodeUnknown, message, false)
	}
}
