package apperror

import (
	"errors"
	"net/http"
)

// HTTPStatus maps an error category to its HTTP status code.
//
// Any error that does not carry one of the sentinels above is an unexpected
// failure and maps to 500. That includes plain errors from the database or
// the session store.
//
// Conflict is 400, not 409: clients already treat a duplicate email as a
// bad request.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrConflict):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	}
	return http.StatusInternalServerError
}

// ClientMessage returns the message safe to show for err: the AppError
// message when there is one, or a generic text otherwise.
func ClientMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "Internal server error"
}
