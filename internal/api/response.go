package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/mvidmar/inventra/internal/store"
)

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("encoding response", "error", err)
		}
	}
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}

// decodeJSON decodes a JSON request body into the given target.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}

// storeError maps a store error to the right HTTP response: field errors
// to 400, missing records to 404, conflicts to 409, everything else to a
// logged 500 with the generic message.
func storeError(w http.ResponseWriter, err error, message string) {
	var fieldErrs store.ValidationErrors
	switch {
	case errors.As(err, &fieldErrs):
		jsonResponse(w, http.StatusBadRequest, map[string]any{"errors": fieldErrs})
	case errors.Is(err, store.ErrNotFound):
		jsonError(w, http.StatusNotFound, message+": not found")
	case errors.Is(err, store.ErrConflict):
		jsonError(w, http.StatusConflict, message+": conflict, retry the request")
	default:
		slog.Error(message, "error", err)
		jsonError(w, http.StatusInternalServerError, message)
	}
}
