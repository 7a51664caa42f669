package httpserver

import (
	"errors"
	"net/http"

	"github.com/lhanjian/yarhs/pkg/domain"
)

// statusForError implements spec.md §7's error-taxonomy-to-status mapping
// for the data plane.
func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrMethodNotAllowed):
		return http.StatusMethodNotAllowed
	case errors.Is(err, domain.ErrPayloadTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, domain.ErrRangeNotSatisfiable):
		return http.StatusRequestedRangeNotSatisfiable
	case errors.Is(err, domain.ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, domain.ErrInternalIO):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
