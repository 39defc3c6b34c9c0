// Package errors provides the error taxonomy shared by the series container,
// the instance store and the segmented property registry.
package errors

import (
	"errors"
	"fmt"
)

// Common errors
var (
	// ErrNotFound is returned when a file path does not exist at registration time.
	ErrNotFound = errors.New("dicomseries: path not found")
	// ErrTypeMismatch is returned when a copy is requested from an incompatible object.
	ErrTypeMismatch = errors.New("dicomseries: type mismatch")
	// ErrIO is returned when deferred buffer materialization fails.
	ErrIO = errors.New("dicomseries: i/o failure")
	// ErrUnavailable is returned when content is requested for an unregistered instance.
	ErrUnavailable = errors.New("dicomseries: instance not available")
	// ErrMalformedRow marks a registry row that was skipped while loading.
	ErrMalformedRow = errors.New("dicomseries: malformed registry row")
)

// InstanceError reports a failure tied to one instance of a series.
type InstanceError struct {
	Index uint64
	Path  string
	Err   error
}

func (e *InstanceError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("instance %d: %v", e.Index, e.Err)
	}
	return fmt.Sprintf("instance %d (%s): %v", e.Index, e.Path, e.Err)
}

func (e *InstanceError) Unwrap() error {
	return e.Err
}

// NewInstanceError creates a new instance error
func NewInstanceError(index uint64, path string, err error) *InstanceError {
	return &InstanceError{
		Index: index,
		Path:  path,
		Err:   err,
	}
}

// TypeMismatchError represents a copy between incompatible object types
type TypeMismatchError struct {
	Operation string
	Expected  string
	Got       string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("%s: expected %s, got %s", e.Operation, e.Expected, e.Got)
}

func (e *TypeMismatchError) Unwrap() error {
	return ErrTypeMismatch
}

// NewTypeMismatchError creates a new type mismatch error. got is formatted with %T.
func NewTypeMismatchError(operation, expected string, got any) *TypeMismatchError {
	return &TypeMismatchError{
		Operation: operation,
		Expected:  expected,
		Got:       fmt.Sprintf("%T", got),
	}
}

// RowError describes a registry row that could not be loaded.
type RowError struct {
	Line   int
	Reason string
}

func (e *RowError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
}

func (e *RowError) Unwrap() error {
	return ErrMalformedRow
}

// NewRowError creates a new row error
func NewRowError(line int, format string, args ...any) *RowError {
	return &RowError{
		Line:   line,
		Reason: fmt.Sprintf(format, args...),
	}
}
