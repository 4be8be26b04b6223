package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches errors by code so sentinel comparisons survive Clone.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e != nil && t != nil && e.Code == t.Code
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors for common scenarios.
var (
	ErrUserNotFound    = New("USER_NOT_FOUND", http.StatusNotFound, "user not found")
	ErrCourseNotFound  = New("COURSE_NOT_FOUND", http.StatusNotFound, "course not found")
	ErrSectionNotFound = New("SECTION_NOT_FOUND", http.StatusNotFound, "section not found")
	ErrRequestNotFound = New("REQUEST_NOT_FOUND", http.StatusNotFound, "request not found")

	ErrCoursePermission = New("COURSE_PERMISSION", http.StatusForbidden, "missing required role in course")
	ErrClassPermission  = New("CLASS_PERMISSION", http.StatusForbidden, "missing required role in class")

	ErrResponseExists   = New("RESPONSE_EXISTS", http.StatusConflict, "request already has a response")
	ErrResponseNotFound = New("RESPONSE_NOT_FOUND", http.StatusNotFound, "request does not have a response yet")

	ErrWriteNotAcknowledged = New("WRITE_NOT_ACKNOWLEDGED", http.StatusInternalServerError, "write was not acknowledged by the store")

	ErrInvalidCredentials = New("INVALID_CREDENTIALS", http.StatusUnauthorized, "invalid email or password")
	ErrUnauthorized       = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrValidation         = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInternal           = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}
