package apperrors

import (
	"errors"
	"fmt"
)

// Common errors
var (
	// ErrValidationFailed is returned when caller input breaks a field rule
	// (blank course name, negative credit hours).
	ErrValidationFailed = errors.New("validation failed")

	// ErrStorageFault marks any failure of the underlying store (disk, driver,
	// connection). Duplicates and missing names are never storage faults.
	ErrStorageFault = errors.New("storage fault")

	// ErrBadRequest is returned for malformed requests at the HTTP boundary
	ErrBadRequest = errors.New("bad request")
)

// StorageError wraps a driver error with the store operation that produced it.
type StorageError struct {
	Op  string
	Err error
}

// NewStorageError creates a StorageError for the given operation
func NewStorageError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}

// Error implements error interface
func (e *StorageError) Error() string {
	return fmt.Sprintf("storage fault during %s: %v", e.Op, e.Err)
}

// Unwrap returns the driver error
func (e *StorageError) Unwrap() error {
	return e.Err
}

// Is reports ErrStorageFault as a match so callers can test the kind
// without knowing the driver.
func (e *StorageError) Is(target error) bool {
	return target == ErrStorageFault
}

// IsStorageFault reports whether err is, or wraps, a storage fault
func IsStorageFault(err error) bool {
	return errors.Is(err, ErrStorageFault)
}

// NewValidationError wraps ErrValidationFailed with a field-level message
func NewValidationError(field, message string) error {
	return &CustomError{
		Err:     ErrValidationFailed,
		Message: message,
		Field:   field,
	}
}

// NewBadRequestError creates a new custom error for bad request with a message
func NewBadRequestError(message string) error {
	return &CustomError{
		Err:     ErrBadRequest,
		Message: message,
	}
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
	Field   string
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}
