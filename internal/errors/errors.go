// Package errors defines the categorized error taxonomy for the sync pipeline
// and the API boundary.
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/club-leaderboard/internal/types"
)

// ErrorCategory represents the category of an error
type ErrorCategory string

const (
	// CategoryAuth represents authentication/token errors; fatal to a sync run
	CategoryAuth ErrorCategory = "auth"
	// CategoryStageFetch represents a single failed fetch unit (segment or page)
	CategoryStageFetch ErrorCategory = "stage_fetch"
	// CategoryRateLimit represents a 429 from the external API
	CategoryRateLimit ErrorCategory = "rate_limit"
	// CategoryPersistence represents a failed store write
	CategoryPersistence ErrorCategory = "persistence"
	// CategoryUserInput represents user input errors (4xx)
	CategoryUserInput ErrorCategory = "user_input"
	// CategoryNotFound represents not found errors
	CategoryNotFound ErrorCategory = "not_found"
	// CategoryConflict represents conflict errors
	CategoryConflict ErrorCategory = "conflict"
	// CategorySystem represents system errors (5xx)
	CategorySystem ErrorCategory = "system"
)

// CategorizedError represents an error with category and HTTP status code
type CategorizedError struct {
	Category   ErrorCategory
	StatusCode int
	Code       string
	Message    string
	Details    map[string]interface{}
	Cause      error
}

// Error implements the error interface
func (e *CategorizedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause
func (e *CategorizedError) Unwrap() error {
	return e.Cause
}

// ToServiceError converts to a ServiceError
func (e *CategorizedError) ToServiceError() *types.ServiceError {
	return &types.ServiceError{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	}
}

// NewFatalAuthError creates a token refresh/exchange failure. This is the one
// error class that aborts a sync run outright.
func NewFatalAuthError(message string, cause error) *CategorizedError {
	return &CategorizedError{
		Category:   CategoryAuth,
		StatusCode: http.StatusUnauthorized,
		Code:       "AUTH_FAILED",
		Message:    message,
		Cause:      cause,
	}
}

// NewStageFetchError creates a non-fatal per-unit fetch failure. The pipeline
// records it and moves to the next unit of work.
func NewStageFetchError(unit string, cause error) *CategorizedError {
	return &CategorizedError{
		Category:   CategoryStageFetch,
		StatusCode: http.StatusBadGateway,
		Code:       "STAGE_FETCH_FAILED",
		Message:    fmt.Sprintf("fetch failed for %s", unit),
		Cause:      cause,
		Details: map[string]interface{}{
			"unit": unit,
		},
	}
}

// NewRateLimitError creates a retryable rate-limit error carrying the
// service's advertised reset time.
func NewRateLimitError(resetAt time.Time) *CategorizedError {
	return &CategorizedError{
		Category:   CategoryRateLimit,
		StatusCode: http.StatusTooManyRequests,
		Code:       "RATE_LIMITED",
		Message:    "external API rate limit exceeded",
		Details: map[string]interface{}{
			"resetAt": resetAt,
		},
	}
}

// NewPersistenceError creates a store write failure. Logged and continued;
// prior successful writes in the run are not rolled back.
func NewPersistenceError(operation string, cause error) *CategorizedError {
	return &CategorizedError{
		Category:   CategoryPersistence,
		StatusCode: http.StatusInternalServerError,
		Code:       "PERSISTENCE_ERROR",
		Message:    fmt.Sprintf("store write failed during %s", operation),
		Cause:      cause,
		Details: map[string]interface{}{
			"operation": operation,
		},
	}
}

// NewInvalidParameterError creates an invalid parameter error
func NewInvalidParameterError(param string, reason string) *CategorizedError {
	return &CategorizedError{
		Category:   CategoryUserInput,
		StatusCode: http.StatusBadRequest,
		Code:       "INVALID_PARAMETER",
		Message:    fmt.Sprintf("invalid parameter '%s': %s", param, reason),
		Details: map[string]interface{}{
			"parameter": param,
			"reason":    reason,
		},
	}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError(message string) *CategorizedError {
	return &CategorizedError{
		Category:   CategoryUserInput,
		StatusCode: http.StatusUnauthorized,
		Code:       "UNAUTHORIZED",
		Message:    message,
	}
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string, id string) *CategorizedError {
	return &CategorizedError{
		Category:   CategoryNotFound,
		StatusCode: http.StatusNotFound,
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("%s not found: %s", resource, id),
		Details: map[string]interface{}{
			"resource": resource,
			"id":       id,
		},
	}
}

// NewConflictError creates a conflict error
func NewConflictError(message string) *CategorizedError {
	return &CategorizedError{
		Category:   CategoryConflict,
		StatusCode: http.StatusConflict,
		Code:       "CONFLICT",
		Message:    message,
	}
}

// NewInternalError creates an internal server error
func NewInternalError(message string, cause error) *CategorizedError {
	return &CategorizedError{
		Category:   CategorySystem,
		StatusCode: http.StatusInternalServerError,
		Code:       "INTERNAL_ERROR",
		Message:    message,
		Cause:      cause,
	}
}

// Categorize categorizes an existing error
func Categorize(err error) *CategorizedError {
	if err == nil {
		return nil
	}

	var catErr *CategorizedError
	if errors.As(err, &catErr) {
		return catErr
	}

	return NewInternalError("unexpected error", err)
}

// GetHTTPStatusCode returns the HTTP status code for an error
func GetHTTPStatusCode(err error) int {
	if catErr := Categorize(err); catErr != nil {
		return catErr.StatusCode
	}
	return http.StatusInternalServerError
}

// IsFatalAuth reports whether an error should abort the whole sync run.
func IsFatalAuth(err error) bool {
	catErr := Categorize(err)
	return catErr != nil && catErr.Category == CategoryAuth
}

// IsRateLimit reports whether an error is a retryable rate-limit response.
func IsRateLimit(err error) bool {
	catErr := Categorize(err)
	return catErr != nil && catErr.Category == CategoryRateLimit
}

// RateLimitResetAt extracts the advertised reset time from a rate-limit
// error. Returns the zero time when absent.
func RateLimitResetAt(err error) time.Time {
	catErr := Categorize(err)
	if catErr == nil || catErr.Category != CategoryRateLimit {
		return time.Time{}
	}
	if resetAt, ok := catErr.Details["resetAt"].(time.Time); ok {
		return resetAt
	}
	return time.Time{}
}

// IsRetryable determines if an error is retryable
func IsRetryable(err error) bool {
	catErr := Categorize(err)
	if catErr == nil {
		return false
	}

	switch catErr.Category {
	case CategoryRateLimit, CategoryStageFetch, CategoryPersistence:
		return true
	case CategorySystem:
		return catErr.StatusCode == http.StatusServiceUnavailable ||
			catErr.StatusCode == http.StatusGatewayTimeout
	default:
		return false
	}
}
