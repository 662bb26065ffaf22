package records

import (
	"errors"
	"fmt"

	"github.com/aagaur/studiocms/media"
)

// ErrNotFound is returned when no record has the requested id.
var ErrNotFound = errors.New("record not found")

// ValidationError rejects a request before anything is uploaded or stored.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// PersistenceError wraps a failure of the record store.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// AsValidation turns a rejected file into a ValidationError. Other errors pass through.
func AsValidation(err error) error {
	var fe *media.FileError
	if !errors.As(err, &fe) {
		return err
	}
	msg := fe.Reason
	if fe.Filename != "" {
		msg = fe.Filename + ": " + fe.Reason
	}
	return &ValidationError{Field: fe.Field, Message: msg}
}
