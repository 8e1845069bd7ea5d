package core

import "github.com/pkg/errors"

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

// ValidationError indicates malformed or out-of-range caller input.
// It is surfaced as a 400 response.
type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

// NotFoundError indicates that a referenced entity does not exist.
// It is surfaced as a 404 response.
type NotFoundError struct {
	msg string
}

func NewNotFoundError(msg string) error {
	return &NotFoundError{msg}
}

func (err NotFoundError) Error() string {
	return err.msg
}

// PermissionError indicates a caller role mismatch. Surfaced as 403.
type PermissionError struct {
	msg string
}

func NewPermissionError(msg string) error {
	return &PermissionError{msg}
}

func (err PermissionError) Error() string {
	return err.msg
}

// ConflictError indicates a scheduling overlap or duplicate.
// Surfaced as a 400 response with an explanatory message.
type ConflictError struct {
	msg string
}

func NewConflictError(msg string) error {
	return &ConflictError{msg}
}

func (err ConflictError) Error() string {
	return err.msg
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
