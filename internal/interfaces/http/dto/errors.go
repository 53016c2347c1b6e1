package dto

import "net/http"

// General error codes
const (
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "INTERNAL_ERROR"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "BAD_REQUEST"
	// ErrCodeValidation is used when request body validation fails
	ErrCodeValidation = "VALIDATION_ERROR"
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "NOT_FOUND"
	// ErrCodeUnauthorized is used when authentication is required but missing/invalid
	ErrCodeUnauthorized = "UNAUTHORIZED"
	// ErrCodeRateLimited is used when a rate limit is exceeded
	ErrCodeRateLimited = "RATE_LIMITED"
	// ErrCodeRequestTooLarge is used when the request body exceeds the limit
	ErrCodeRequestTooLarge = "REQUEST_TOO_LARGE"
)

// ErrorCodeHTTPStatus maps domain and transport error codes to HTTP
// status codes. Codes not listed here fall back to 500.
var ErrorCodeHTTPStatus = map[string]int{
	// General
	ErrCodeInternal:        http.StatusInternalServerError,
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeValidation:      http.StatusBadRequest,
	ErrCodeNotFound:        http.StatusNotFound,
	ErrCodeUnauthorized:    http.StatusUnauthorized,
	ErrCodeRateLimited:     http.StatusTooManyRequests,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,

	// Checkout lifecycle
	"CHECKOUT_INIT_FAILED": http.StatusBadGateway,
	"EMPTY_CART":           http.StatusBadRequest,
	"STORE_INACTIVE":       http.StatusUnprocessableEntity,
	"STORE_NOT_FOUND":      http.StatusNotFound,
	"INVALID_STEP":         http.StatusBadRequest,
	"STEP_NOT_ALLOWED":     http.StatusConflict,
	"VALIDATION_FAILED":    http.StatusUnprocessableEntity,
	"SESSION_EXPIRED":      http.StatusGone,
	"NO_SESSION":           http.StatusNotFound,

	// Payments
	"INVALID_PAYMENT_DATA":     http.StatusBadRequest,
	"SERVICE_UNAVAILABLE":      http.StatusServiceUnavailable,
	"VERIFICATION_FAILED":      http.StatusUnprocessableEntity,
	"UNKNOWN_GATEWAY":          http.StatusBadRequest,
	"PAYMENT_RECORD_NOT_FOUND": http.StatusNotFound,
	"DUPLICATE_PAYMENT_RECORD": http.StatusConflict,

	// Guest cart
	"INVALID_PRODUCT":  http.StatusBadRequest,
	"INVALID_QUANTITY": http.StatusBadRequest,
	"INVALID_STORE":    http.StatusBadRequest,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Returns 500 Internal Server Error if the error code is not found.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
