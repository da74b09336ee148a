package citydesk

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrEmptyInput is returned when a required input slice is empty.
var ErrEmptyInput = errors.New("empty input")

// ErrorCategory classifies errors by how they should be handled.
type ErrorCategory string

const (
	// ErrorTransient indicates the error is temporary and the operation can be retried.
	// Examples: rate limits, temporary network issues, server overload.
	ErrorTransient ErrorCategory = "transient"

	// ErrorPermanent indicates the error is not recoverable through retry.
	// Examples: invalid API key, insufficient permissions, model not found.
	ErrorPermanent ErrorCategory = "permanent"

	// ErrorUserInput indicates the user provided input that must be corrected.
	// Examples: unknown city, unsupported temperature unit.
	ErrorUserInput ErrorCategory = "user_input"
)

// CategorizedError is an error that provides information about how it should be handled.
type CategorizedError interface {
	error
	Category() ErrorCategory
}

// UserFacingError is implemented by errors that carry a message meant to be
// relayed to the end user verbatim.
type UserFacingError interface {
	error
	UserMessage() string
}

// Error is a categorized error with metadata for error handling decisions.
type Error struct {
	Msg   string
	Cat   ErrorCategory
	Code  int   // HTTP status code, 0 if not applicable
	Cause error // underlying error
}

// Error returns the error message.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Cause)
	}
	return e.Msg
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Category returns the error category.
func (e *Error) Category() ErrorCategory {
	return e.Cat
}

// Retryable returns true if the error is transient and can be retried.
func (e *Error) Retryable() bool {
	return e.Cat == ErrorTransient
}

// NewTransientError creates a transient error that can be retried.
func NewTransientError(msg string, statusCode int, cause error) *Error {
	return &Error{Msg: msg, Cat: ErrorTransient, Code: statusCode, Cause: cause}
}

// NewPermanentError creates a permanent error that should not be retried.
func NewPermanentError(msg string, statusCode int, cause error) *Error {
	return &Error{Msg: msg, Cat: ErrorPermanent, Code: statusCode, Cause: cause}
}

// NewUserInputError creates an error indicating invalid user input.
func NewUserInputError(msg string, statusCode int, cause error) *Error {
	return &Error{Msg: msg, Cat: ErrorUserInput, Code: statusCode, Cause: cause}
}

// ClassifyStatus wraps a provider error according to its HTTP status code.
func ClassifyStatus(msg string, statusCode int, cause error) *Error {
	switch {
	case statusCode == http.StatusTooManyRequests, statusCode >= 500:
		return NewTransientError(msg, statusCode, cause)
	case statusCode == http.StatusBadRequest, statusCode == http.StatusUnprocessableEntity:
		return NewUserInputError(msg, statusCode, cause)
	case statusCode == 0:
		return NewTransientError(msg, 0, cause)
	default:
		return NewPermanentError(msg, statusCode, cause)
	}
}

// CategoryOf returns the category of err, or "" if it carries none.
func CategoryOf(err error) ErrorCategory {
	var ce CategorizedError
	if errors.As(err, &ce) {
		return ce.Category()
	}
	return ""
}

// IsTransient returns true if the error is categorized as transient.
func IsTransient(err error) bool {
	return CategoryOf(err) == ErrorTransient
}

// IsPermanent returns true if the error is categorized as permanent.
func IsPermanent(err error) bool {
	return CategoryOf(err) == ErrorPermanent
}

// IsUserInput returns true if the error is categorized as user input error.
func IsUserInput(err error) bool {
	return CategoryOf(err) == ErrorUserInput
}

// UserMessageOf extracts the user-facing message carried by err.
func UserMessageOf(err error) (string, bool) {
	var ue UserFacingError
	if errors.As(err, &ue) {
		return ue.UserMessage(), true
	}
	return "", false
}
