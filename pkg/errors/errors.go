package errors

import (
	"errors"
	"fmt"
)

// Error represents a typed dialogue error carrying an operator-facing message.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
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

// Is matches errors sharing the same code, so clones satisfy errors.Is against their sentinel.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code
}

// New creates a new Error instance.
func New(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code, message string) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// Predefined errors for the dialogue taxonomy.
var (
	ErrAuthorization   = New("UNAUTHORIZED", "access denied")
	ErrSessionConflict = New("SESSION_CONFLICT", "another edit is already in progress")
	ErrState           = New("INVALID_STATE", "no edit in progress, please start again")
	ErrUnknownField    = New("UNKNOWN_FIELD", "unknown field")
	ErrStorage         = New("STORAGE_ERROR", "failed to save changes")
	ErrNotFound        = New("NOT_FOUND", "record not found")
	ErrValidation      = New("VALIDATION_ERROR", "invalid value")
	ErrCacheMiss       = New("CACHE_MISS", "cache miss")
	ErrInternal        = New("INTERNAL_ERROR", "internal error")
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
	return Wrap(err, ErrInternal.Code, ErrInternal.Message)
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

// CloneWrap clones err with a message override and attaches cause.
func CloneWrap(err *Error, cause error, message string) *Error {
	clone := Clone(err, message)
	if clone != nil {
		clone.Err = cause
	}
	return clone
}
