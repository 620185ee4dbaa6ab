package query

import (
	"errors"
	"fmt"
)

// Sentinel errors - use with errors.Is() for matching
var (
	// ErrUnsupportedClient is returned when a search handle is bound to a backend
	// that is neither a synchronous nor an asynchronous executor
	ErrUnsupportedClient = errors.New("unsupported search client")

	// ErrInvalidParams is returned when pagination params are of the wrong kind
	// or fail validation
	ErrInvalidParams = errors.New("invalid pagination params")

	// ErrInvalidCursor is returned when a cursor string cannot be decoded
	ErrInvalidCursor = errors.New("invalid cursor")

	// ErrFieldNotAllowed is returned when a field is not in the AllowedFields whitelist
	ErrFieldNotAllowed = errors.New("field not allowed")

	// ErrInvalidQuery is returned when the query body cannot be evaluated by a backend
	ErrInvalidQuery = errors.New("invalid query")

	// ErrExecutionFailed is returned when query execution fails at backend level
	ErrExecutionFailed = errors.New("query execution failed")
)

// FieldError wraps an error with field name information
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field '%s': %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// NewFieldError creates a new FieldError
func NewFieldError(field string, err error) error {
	return &FieldError{
		Field: field,
		Err:   err,
	}
}

// InvalidParamError creates an error for a pagination param that failed validation
func InvalidParamError(field string) error {
	return NewFieldError(field, ErrInvalidParams)
}

// FieldNotAllowedError creates an error for fields not in AllowedFields
func FieldNotAllowedError(field string) error {
	return NewFieldError(field, ErrFieldNotAllowed)
}

// ExecutionError wraps a backend execution error
type ExecutionError struct {
	Operation string
	Err       error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("%s: %v", e.Operation, e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

// Is reports ErrExecutionFailed as a match so callers can test for any
// backend failure without knowing the cause
func (e *ExecutionError) Is(target error) bool {
	return target == ErrExecutionFailed
}

// NewExecutionError creates a new ExecutionError
func NewExecutionError(operation string, err error) error {
	if err == nil {
		return nil
	}
	return &ExecutionError{
		Operation: operation,
		Err:       err,
	}
}
