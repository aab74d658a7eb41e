package messages

import (
	"errors"
	"net/http"

	"github.com/smartclass/triage/pkg/database"
)

// Domain errors for message operations.
var (
	ErrNotFound      = errors.New("message not found")
	ErrDuplicate     = errors.New("message already exists")
	ErrValidation    = errors.New("invalid message")
	ErrInvalidStatus = errors.New("invalid status")
	ErrInvalidWindow = errors.New("invalid time window")
)

// MapHTTPStatus picks the response status for an error returned by System.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrValidation), errors.Is(err, ErrInvalidStatus), errors.Is(err, ErrInvalidWindow):
		return http.StatusBadRequest
	case errors.Is(err, database.ErrNotReady):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
