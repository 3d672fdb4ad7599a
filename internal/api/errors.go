package api

import (
	"errors"
	"net/http"
)

var (
	ErrNotFound          = errors.New("requested item not found")
	ErrConflict          = errors.New("item already exists or conflict")
	ErrUnauthenticated   = errors.New("authentication required or invalid credentials")
	ErrForbidden         = errors.New("action forbidden")
	ErrInvalidTransition = errors.New("illegal signing request state transition")
	ErrValidation        = errors.New("validation failed")
	ErrTimeout           = errors.New("request timed out")
	ErrTransport         = errors.New("transport failure")
)

// StatusFromError maps the domain error taxonomy onto HTTP status codes.
func StatusFromError(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict), errors.Is(err, ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrTimeout):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
