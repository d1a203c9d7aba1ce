package packs

import (
	"errors"
	"fmt"
)

// Error kinds. Handlers map these to HTTP statuses with errors.Is.
var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("conflict")
	ErrDependency   = errors.New("dependency failure")
)

type opError struct {
	kind error
	msg  string
}

func (e *opError) Error() string { return e.msg }
func (e *opError) Unwrap() error { return e.kind }

// failf attaches a caller-facing message to an error kind.
func failf(kind error, format string, args ...interface{}) error {
	return &opError{kind: kind, msg: fmt.Sprintf(format, args...)}
}
