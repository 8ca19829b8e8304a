package errors

import (
	"context"
	"errors"
	"net/http"
)

// HTTPStatus maps an error from the taxonomy to the status code returned by
// the conversion service.
func HTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}

	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrEmptyResult):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// ExitCode maps an error to a process exit status for the CLI. Empty results
// get their own code so scripts can tell them apart from failures.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrEmptyResult):
		return 3
	case errors.Is(err, ErrInvalidInput):
		return 2
	default:
		return 1
	}
}
