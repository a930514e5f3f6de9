package domain

import (
	"errors"
	"fmt"
)

// ErrorCode represents a semantic classification shared across transport layers.
type ErrorCode string

const (
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"
	ErrCodeInvalid      ErrorCode = "INVALID"
	ErrCodeConflict     ErrorCode = "CONFLICT"
	ErrCodeForbidden    ErrorCode = "FORBIDDEN"
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeRateLimited  ErrorCode = "RATE_LIMITED"
	ErrCodeInternal     ErrorCode = "INTERNAL"
)

// Error represents a domain-level error. Message is safe to show to clients,
// Err carries the underlying cause for logs only.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches domain errors by code and message so wrapped copies of the
// sentinels below still satisfy errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// NewError builds a domain error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError wraps an existing error with a domain classification.
func WrapError(code ErrorCode, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain errors.
var (
	ErrUserNotFound   = NewError(ErrCodeNotFound, "user not found")
	ErrEmailTaken     = NewError(ErrCodeConflict, "Email is already registered")
	ErrInvalidPayload = NewError(ErrCodeInvalid, "invalid payload")

	ErrMissingFields      = NewError(ErrCodeInvalid, "All fields are required")
	ErrInvalidEmail       = NewError(ErrCodeInvalid, "Invalid email format")
	ErrInvalidCoordinates = NewError(ErrCodeInvalid, "Latitude and Longitude must be valid numbers")
	ErrMissingDestination = NewError(ErrCodeInvalid, "Destination latitude and longitude are required")
	ErrWeekdaysRequired   = NewError(ErrCodeInvalid, "week_number array is required")
	ErrNoValidDays        = NewError(ErrCodeInvalid, "Invalid days provided. Use numbers between 0 (Sunday) to 6 (Saturday).")

	ErrNoToken       = NewError(ErrCodeUnauthorized, "Access denied. No token provided.")
	ErrInvalidToken  = NewError(ErrCodeUnauthorized, "Invalid or expired token")
	ErrNotAuthorized = NewError(ErrCodeForbidden, "User is not authorized")

	ErrTooManyRequests = NewError(ErrCodeRateLimited, "Too many requests")
	ErrInternal        = NewError(ErrCodeInternal, "Internal Server Error")
)

// IsDomainError helps checking error codes.
func IsDomainError(err error, code ErrorCode) bool {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code == code
	}
	return false
}
