package domain

import (
	"errors"
	"fmt"
)

// ErrorCode represents a semantic classification shared across transport layers.
type ErrorCode string

const (
	ErrCodeNotFound           ErrorCode = "NOT_FOUND"
	ErrCodeInvalid            ErrorCode = "INVALID"
	ErrCodeMalformedTimestamp ErrorCode = "MALFORMED_TIMESTAMP"
	ErrCodePastDeadline       ErrorCode = "PAST_DEADLINE"
	ErrCodeIllegalState       ErrorCode = "ILLEGAL_STATE"
	ErrCodeDelivery           ErrorCode = "DELIVERY"
	ErrCodeUnauthorized       ErrorCode = "UNAUTHORIZED"
	ErrCodeInternal           ErrorCode = "INTERNAL"
)

// Error represents a domain-level error.
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
	ErrTodoNotFound = NewError(ErrCodeNotFound, "todo not found")
	ErrLinkNotFound = NewError(ErrCodeNotFound, "link not found")

	ErrMalformedTimestamp = NewError(ErrCodeMalformedTimestamp,
		"deadline must use the YYYY-MM-DD or YYYY-MM-DD HH:MM format")
	ErrPastDeadline   = NewError(ErrCodePastDeadline, "deadline must be in the future")
	ErrEmptyContent   = NewError(ErrCodeInvalid, "content must not be empty")
	ErrMalformedClock = NewError(ErrCodeInvalid, "reminder time must use the HH:MM format")
	ErrInvalidID      = NewError(ErrCodeInvalid, "id must be an integer")

	ErrAlreadyCompleted  = NewError(ErrCodeIllegalState, "todo is already completed")
	ErrCompletedDeadline = NewError(ErrCodeIllegalState, "cannot change the deadline of a completed todo")
	ErrAlreadyRead       = NewError(ErrCodeIllegalState, "link is already marked read")

	ErrUnauthorized   = NewError(ErrCodeUnauthorized, "unauthorized")
	ErrInvalidPayload = NewError(ErrCodeInvalid, "invalid payload")
)

// IsDomainError helps checking error codes.
func IsDomainError(err error, code ErrorCode) bool {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code == code
	}
	return false
}

// CodeOf extracts the domain error code from err, defaulting to INTERNAL
// for errors that carry no classification.
func CodeOf(err error) ErrorCode {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code
	}
	return ErrCodeInternal
}
