package core

import "github.com/pkg/errors"

// FieldError ties a validation message to a single struct field.
type FieldError struct {
	Field string
	Error string
}

// ValidationError reports input rejected before it reached storage. Fields
// carries per-field messages; Err is used for failures not tied to any
// particular field (e.g. bad credentials).
type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{Err: err, Fields: flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

// shutdown is an unrecoverable error: the server sheds load and stops
// gracefully when one surfaces.
type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string { return s.message }

// IsShutdown reports whether err was caused by a shutdown error.
func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
