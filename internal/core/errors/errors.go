package errors

import (
	"errors"
	"fmt"
)

// Domain errors - these represent business rule violations
var (
	// Authentication
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("action forbidden")
	ErrUsernameRequired   = errors.New("username is required")
	ErrPasswordTooWeak    = errors.New("password does not meet security requirements")
	ErrInvalidRole        = errors.New("invalid role")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")

	// Service registry
	ErrServiceNotFound   = errors.New("service not found")
	ErrServiceInactive   = errors.New("service is not accepting new tickets")
	ErrServiceHasTickets = errors.New("service still has active tickets")

	// Tickets & queue
	ErrTicketNotFound          = errors.New("ticket not found")
	ErrInvalidPriority         = errors.New("invalid ticket priority")
	ErrInvalidStatus           = errors.New("invalid ticket status")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	ErrNotesTooLong            = errors.New("notes exceed maximum length")

	// ErrEmptyQueue signals call-next against a queue with no waiting
	// tickets. A normal outcome, not a fault.
	ErrEmptyQueue = errors.New("no waiting tickets in queue")

	// ErrAllocationConflict is the transient ticket-number collision.
	// Retried internally; only surfaced when retries are exhausted.
	ErrAllocationConflict = errors.New("ticket number allocation conflict")

	// Generic
	ErrNotFound    = errors.New("resource not found")
	ErrInternal    = errors.New("internal server error")
	ErrBadRequest  = errors.New("bad request")
	ErrConflict    = errors.New("resource conflict")
	ErrRateLimited = errors.New("rate limit exceeded")
)

// AppError wraps errors with additional context for HTTP responses
type AppError struct {
	Err        error  // The underlying error
	Message    string // User-friendly message
	Code       string // Machine-readable error code
	StatusCode int    // HTTP status code
	Details    map[string]interface{}
}

func (e *AppError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Err.Error()
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Error constructors for common cases
func NewBadRequestError(err error, message string) *AppError {
	return &AppError{
		Err:        err,
		Message:    message,
		Code:       "BAD_REQUEST",
		StatusCode: 400,
	}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Err:        ErrUnauthorized,
		Message:    message,
		Code:       "UNAUTHORIZED",
		StatusCode: 401,
	}
}

func NewForbiddenError(message string) *AppError {
	return &AppError{
		Err:        ErrForbidden,
		Message:    message,
		Code:       "FORBIDDEN",
		StatusCode: 403,
	}
}

func NewNotFoundError(err error, message string) *AppError {
	return &AppError{
		Err:        err,
		Message:    message,
		Code:       "NOT_FOUND",
		StatusCode: 404,
	}
}

func NewConflictError(err error, message string) *AppError {
	return &AppError{
		Err:        err,
		Message:    message,
		Code:       "CONFLICT",
		StatusCode: 409,
	}
}

func NewValidationError(err error, message string, details map[string]interface{}) *AppError {
	return &AppError{
		Err:        err,
		Message:    message,
		Code:       "VALIDATION_ERROR",
		StatusCode: 422,
		Details:    details,
	}
}

func NewRateLimitError() *AppError {
	return &AppError{
		Err:        ErrRateLimited,
		Message:    "Too many requests. Please try again later.",
		Code:       "RATE_LIMITED",
		StatusCode: 429,
	}
}

func NewInternalError(err error) *AppError {
	return &AppError{
		Err:        err,
		Message:    "An unexpected error occurred",
		Code:       "INTERNAL_ERROR",
		StatusCode: 500,
	}
}

// ValidationErrors holds multiple field validation errors
type ValidationErrors struct {
	Errors map[string][]string `json:"errors"`
}

func NewValidationErrors() *ValidationErrors {
	return &ValidationErrors{
		Errors: make(map[string][]string),
	}
}

func (v *ValidationErrors) Add(field, message string) {
	v.Errors[field] = append(v.Errors[field], message)
}

func (v *ValidationErrors) HasErrors() bool {
	return len(v.Errors) > 0
}

func (v *ValidationErrors) Error() string {
	return fmt.Sprintf("validation failed: %d field(s) have errors", len(v.Errors))
}
