// Package errors defines the error taxonomy shared by the reconciliation engine.
// Typed errors match their sentinel through errors.Is so callers can branch on
// the category without caring about the concrete type.
package errors

import (
	"errors"
	"fmt"
)

// New is the standard library errors.New.
var New = errors.New

// Is reports whether any error in err's tree matches target.
func Is(err, target error) bool { return errors.Is(err, target) }

// As finds the first error in err's tree that matches target.
func As(err error, target any) bool { return errors.As(err, target) }

// Join returns an error that wraps the given errors.
func Join(errs ...error) error { return errors.Join(errs...) }

var (
	// ErrNotFound indicates that a referenced row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates that an idempotent create found a prior row.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidState indicates a state transition requested from the wrong state.
	ErrInvalidState = errors.New("invalid state")

	// ErrInvalidInput indicates that a write would break a data invariant.
	ErrInvalidInput = errors.New("invalid input")

	// ErrConfig indicates missing or malformed configuration.
	ErrConfig = errors.New("configuration error")
)

// NotFoundError reports a lookup that matched nothing.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.ID)
}

// Is implements errors.Is support.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError creates a new NotFoundError.
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// AlreadyExistsError reports that a row for the given identity is already present.
type AlreadyExistsError struct {
	Resource string
	ID       string
}

func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("%s %q already exists", e.Resource, e.ID)
}

// Is implements errors.Is support.
func (e *AlreadyExistsError) Is(target error) bool {
	return target == ErrAlreadyExists
}

// NewAlreadyExistsError creates a new AlreadyExistsError.
func NewAlreadyExistsError(resource, id string) *AlreadyExistsError {
	return &AlreadyExistsError{Resource: resource, ID: id}
}

// InvalidStateError reports an operation that is not allowed in the current state.
type InvalidStateError struct {
	Resource  string
	ID        string
	Operation string
	State     string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("cannot %s %s %s: %s", e.Operation, e.Resource, e.ID, e.State)
}

// Is implements errors.Is support.
func (e *InvalidStateError) Is(target error) bool {
	return target == ErrInvalidState
}

// NewInvalidStateError creates a new InvalidStateError.
func NewInvalidStateError(resource, id, operation, state string) *InvalidStateError {
	return &InvalidStateError{Resource: resource, ID: id, Operation: operation, State: state}
}

// ValidationError represents a violated field invariant.
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is implements errors.Is support.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value any, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// ConfigError represents a configuration failure.
type ConfigError struct {
	Component string
	Message   string
	Err       error
}

func (e *ConfigError) Error() string {
	if e.Component != "" {
		return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// Unwrap implements errors.Unwrap.
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support.
func (e *ConfigError) Is(target error) bool {
	return target == ErrConfig
}

// NewConfigError creates a new ConfigError.
func NewConfigError(component, message string, err error) *ConfigError {
	return &ConfigError{Component: component, Message: message, Err: err}
}

// ParseError reports a malformed input file.
type ParseError struct {
	Format  string
	File    string
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("%s parse error in %s: %s", e.Format, e.File, e.Message)
	}
	return fmt.Sprintf("%s parse error: %s", e.Format, e.Message)
}

// Unwrap implements errors.Unwrap.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support.
func (e *ParseError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewParseError creates a new ParseError.
func NewParseError(format, file, message string, err error) *ParseError {
	return &ParseError{Format: format, File: file, Message: message, Err: err}
}

// IsNotFound checks if an error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if an error is an already exists error.
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsInvalidState checks if an error is an invalid state error.
func IsInvalidState(err error) bool {
	return errors.Is(err, ErrInvalidState)
}

// IsValidationError checks if an error is a validation error.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsConfigError checks if an error is a configuration error.
func IsConfigError(err error) bool {
	return errors.Is(err, ErrConfig)
}
