package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/squiirlabs/marketplace/internal/domain"
)

func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, map[string]string{"error": message})
}

// ClientStatus maps domain errors to a client-facing HTTP status. Errors
// outside the taxonomy are storage-level failures and must be reported as a
// generic 500 by the caller, without leaking internals.
func ClientStatus(err error) (int, bool) {
	var stale *domain.StaleCartItemError
	switch {
	case errors.Is(err, domain.ErrEmptyCart),
		errors.Is(err, domain.ErrMissingAddress),
		errors.As(err, &stale):
		return http.StatusBadRequest, true
	case errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrNoProducts),
		errors.Is(err, domain.ErrNoOrders):
		return http.StatusNotFound, true
	}
	return 0, false
}
