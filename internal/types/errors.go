package types

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrorCode is a typed string for categorizing application errors.
type ErrorCode string

// Handlers MUST use these constants instead of hardcoded strings.
const (
	// Validation (400)
	ErrCodeValidationInvalidJSON        ErrorCode = "validation_invalid_json"
	ErrCodeValidationMissingField       ErrorCode = "validation_missing_required_field"
	ErrCodeValidationInvalidParam       ErrorCode = "validation_invalid_parameter"
	ErrCodeValidationInvalidPreferences ErrorCode = "validation_invalid_preferences"
	ErrCodeValidationInvalidSnapshot    ErrorCode = "validation_invalid_snapshot"
	ErrCodeValidationBatchSize          ErrorCode = "validation_batch_size_exceeded"

	// Not Found (404)
	ErrCodeNotFoundBeach       ErrorCode = "not_found_beach"
	ErrCodeNotFoundPreferences ErrorCode = "not_found_preferences"
	ErrCodeNotFoundTideStation ErrorCode = "not_found_tide_station"

	// Throttling (429)
	ErrCodeRateLimit ErrorCode = "rate_limit_exceeded"

	// Internal/Upstream (500/502)
	ErrCodeInternalDB           ErrorCode = "internal_database_error"
	ErrCodeInternalUnexpected   ErrorCode = "internal_unexpected_error"
	ErrCodeUpstreamWeather      ErrorCode = "upstream_weather_unavailable"
	ErrCodeUpstreamTides        ErrorCode = "upstream_tides_unavailable"
	ErrCodeUpstreamUV           ErrorCode = "upstream_uv_unavailable"
	ErrCodeUpstreamUnavailable  ErrorCode = "upstream_unavailable"
	ErrCodeUpstreamRateLimited  ErrorCode = "upstream_rate_limited"
	ErrCodeUpstreamInvalidReply ErrorCode = "upstream_invalid_response"
)

// HTTPStatus maps an ErrorCode to its corresponding HTTP status code.
// Returns 500 for unrecognized error codes as a safe default.
func (c ErrorCode) HTTPStatus() int {
	s := string(c)
	switch {
	case strings.HasPrefix(s, "validation_"):
		return http.StatusBadRequest
	case strings.HasPrefix(s, "not_found_"):
		return http.StatusNotFound
	case s == string(ErrCodeRateLimit):
		return http.StatusTooManyRequests
	case s == string(ErrCodeUpstreamRateLimited):
		return http.StatusServiceUnavailable
	case strings.HasPrefix(s, "upstream_"):
		return http.StatusBadGateway
	case strings.HasPrefix(s, "internal_"):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// AppError is the standard application error type used throughout the service.
// Domain and handler errors are expressed as AppError so the API layer can
// format them consistently and map them to HTTP statuses.
type AppError struct {
	Code    ErrorCode      `json:"code"`
	Message string         `json:"message"`
	Err     error          `json:"-"`
	Details map[string]any `json:"details,omitempty"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/errors.As support.
func (e *AppError) Unwrap() error {
	return e.Err
}

// HTTPStatus returns the HTTP status code corresponding to this error's code.
func (e *AppError) HTTPStatus() int {
	return e.Code.HTTPStatus()
}

// WithDetails returns a copy of the error with the provided details merged in.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	merged := make(map[string]any, len(e.Details)+len(details))
	for k, v := range e.Details {
		merged[k] = v
	}
	for k, v := range details {
		merged[k] = v
	}
	return &AppError{
		Code:    e.Code,
		Message: e.Message,
		Err:     e.Err,
		Details: merged,
	}
}

// NewAppError creates a new AppError with the given code, message, and optional
// underlying error.
func NewAppError(code ErrorCode, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// NewAppErrorWithDetails creates a new AppError carrying structured details.
func NewAppErrorWithDetails(code ErrorCode, message string, err error, details map[string]any) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
		Details: details,
	}
}

// ErrorCodeOf returns the code of the first AppError in err's chain, or
// internal_unexpected_error.
func ErrorCodeOf(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrCodeInternalUnexpected
}
