package core

import (
	"errors"
	"fmt"
)

// ValidationError marks input rejected at the boundary. It is surfaced to the
// caller and never treated as a system fault.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// DataAccessError wraps a failed read or write against the backing store.
// It propagates unmodified; the engine never falls back to a cached or
// default answer when the store is unreachable.
type DataAccessError struct {
	Op  string
	Err error
}

func (e *DataAccessError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *DataAccessError) Unwrap() error { return e.Err }

var (
	// ErrNotFound is returned when the addressed record does not exist in
	// the caller's organization scope.
	ErrNotFound = errors.New("record not found")

	// ErrConflict is returned when a concurrent update was detected. The
	// pattern usage increment retries once before surfacing it.
	ErrConflict = errors.New("concurrent update conflict")
)

// IsValidation reports whether err is a boundary validation reject.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
