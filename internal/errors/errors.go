package errors

import (
	"errors"
	"fmt"
)

// Application-specific errors
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrUnavailable  = errors.New("upstream unavailable")
	ErrBadSignature = errors.New("signature mismatch")
)

// ValidationError reports a missing or malformed field in an inbound payload
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

// Is lets callers match any ValidationError against ErrInvalidInput
func (e ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// Missing builds a ValidationError for an absent required field
func Missing(field string) ValidationError {
	return ValidationError{Field: field, Message: "required"}
}

// MultiError represents multiple errors
type MultiError struct {
	Errors []error `json:"errors"`
}

func (e MultiError) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%s (and %d more errors)", e.Errors[0].Error(), len(e.Errors)-1)
}

// Unwrap exposes the collected errors to errors.Is and errors.As
func (e MultiError) Unwrap() []error {
	return e.Errors
}

// Add adds an error to the MultiError
func (e *MultiError) Add(err error) {
	if err != nil {
		e.Errors = append(e.Errors, err)
	}
}

// HasErrors returns true if there are any errors
func (e *MultiError) HasErrors() bool {
	return len(e.Errors) > 0
}

// ErrOrNil returns nil when nothing was collected
func (e *MultiError) ErrOrNil() error {
	if !e.HasErrors() {
		return nil
	}
	return *e
}

// UpstreamError represents a failed call to an external service
type UpstreamError struct {
	Service string
	Stage   string
	Err     error
}

func (e UpstreamError) Error() string {
	return fmt.Sprintf("%s error at stage %s: %v", e.Service, e.Stage, e.Err)
}

func (e UpstreamError) Unwrap() error {
	return e.Err
}

// StatusError is returned when an upstream answers with a non-2xx status
type StatusError struct {
	Code   int
	Status string
}

func (e StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.Code, e.Status)
}

func (e StatusError) Is(target error) bool {
	return target == ErrUnavailable
}

// StoreError represents a registry backend failure
type StoreError struct {
	Backend   string
	Operation string
	Err       error
}

func (e StoreError) Error() string {
	return fmt.Sprintf("%s store error during %s: %v", e.Backend, e.Operation, e.Err)
}

func (e StoreError) Unwrap() error {
	return e.Err
}
