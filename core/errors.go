package core

import "github.com/pkg/errors"

// FieldError pins a validation failure to one input field, e.g. an unknown
// grade level or an oversized observation.
type FieldError struct {
	Field string
	Error string
}

// ValidationError rejects an operation before any state changes. It carries a
// single message, per-field errors, or both; the API layer renders the fields
// as a field-to-message map.
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

// shutdown signals an integrity problem the server should stop serving with.
type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

// IsShutdown checks if an error in the chain contains the shutdown type.
func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
