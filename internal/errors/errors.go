package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for different categories
var (
	// ErrInvalidInput - input is not a parseable, non-empty JSON array (rejected before conversion)
	ErrInvalidInput = errors.New("invalid input")

	// ErrEmptyResult - conversion produced zero messages (recoverable, caller decides messaging)
	ErrEmptyResult = errors.New("empty result")

	// ErrConflict - output directory is held by another run
	ErrConflict = errors.New("conflict")

	// ErrInternal - unrecoverable structural fault during conversion, no partial output
	ErrInternal = errors.New("internal error")
)

// Wrap wraps an error with context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}

	return fmt.Errorf("%s: %w", message, err)
}

// IsCategory checks if error belongs to specific category
func IsCategory(err error, category error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, category)
}

// Category returns the taxonomy name for an error
func Category(err error) string {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrInvalidInput):
		return "ErrInvalidInput"
	case errors.Is(err, ErrEmptyResult):
		return "ErrEmptyResult"
	case errors.Is(err, ErrConflict):
		return "ErrConflict"
	case errors.Is(err, ErrInternal):
		return "ErrInternal"
	default:
		return "Unknown"
	}
}

// InvalidInput wraps error as invalid input
func InvalidInput(message string) error {
	return fmt.Errorf("%s: %w", message, ErrInvalidInput)
}

// EmptyResult wraps error as empty result
func EmptyResult(message string) error {
	return fmt.Errorf("%s: %w", message, ErrEmptyResult)
}

// Conflict wraps error as conflict
func Conflict(message string) error {
	return fmt.Errorf("%s: %w", message, ErrConflict)
}

// Internal wraps error as internal
func Internal(message string) error {
	return fmt.Errorf("%s: %w", message, ErrInternal)
}
