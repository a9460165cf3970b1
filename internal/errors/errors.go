// Package errors provides the failure taxonomy shared by the session core
// and the request adapter, plus small error handling utilities.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors classifying every failure the session can produce.
//
// ErrValidation and ErrIO are raised to the caller at the operation boundary,
// before any kernel work happens. ErrExecution, ErrConnectionLost and
// ErrPersistence are captured by the session and rendered into result data;
// only ErrConnectionLost triggers automatic recovery, and only once per call.
var (
	ErrValidation     = errors.New("validation error")
	ErrIO             = errors.New("io error")
	ErrExecution      = errors.New("execution error")
	ErrConnectionLost = errors.New("kernel connection lost")
	ErrPersistence    = errors.New("persistence error")
	ErrNotOpen        = errors.New("no notebook open")
)

// Wrap creates a new error by wrapping an existing error with additional context.
// This uses fmt.Errorf with %w verb for proper error chain support.
func Wrap(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	msg := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", msg, err)
}

// New creates a new error using fmt.Errorf.
// This is a convenience function for creating errors with formatting.
func New(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}

// Is reports whether any error in err's chain matches target.
// This is a convenience wrapper around errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
// This is a convenience wrapper around errors.As.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Join wraps multiple errors into a single error.
// This is a convenience wrapper around errors.Join (Go 1.20+).
func Join(errs ...error) error {
	return errors.Join(errs...)
}

// Validation creates an error classified as a validation failure.
func Validation(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// IO creates an error classified as an input/output failure.
func IO(cause error, format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s: %w", ErrIO, fmt.Sprintf(format, args...), cause)
}

// Persistence creates an error classified as a document persistence failure.
func Persistence(cause error) error {
	return fmt.Errorf("%w: %w", ErrPersistence, cause)
}

// ConnectionLost creates an error classified as a transient backend loss.
func ConnectionLost(cause error, format string, args ...interface{}) error {
	if cause == nil {
		return fmt.Errorf("%w: %s", ErrConnectionLost, fmt.Sprintf(format, args...))
	}
	return fmt.Errorf("%w: %s: %w", ErrConnectionLost, fmt.Sprintf(format, args...), cause)
}

// Kind reports the taxonomy name for an error, for inclusion in tool reports.
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return "ValidationError"
	case errors.Is(err, ErrNotOpen):
		return "ValidationError"
	case errors.Is(err, ErrIO):
		return "IOError"
	case errors.Is(err, ErrConnectionLost):
		return "ConnectionLost"
	case errors.Is(err, ErrPersistence):
		return "PersistenceError"
	case errors.Is(err, ErrExecution):
		return "ExecutionError"
	default:
		return "InternalError"
	}
}
