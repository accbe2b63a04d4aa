package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"finflow/internal/core"
	"finflow/internal/store"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// ownerID extracts the authenticated owner from the request. A gateway
// in front of this service is expected to validate the identity; here an
// empty header simply means unauthenticated.
func ownerID(r *http.Request) (string, bool) {
	id := strings.TrimSpace(r.Header.Get("X-Owner-ID"))
	return id, id != ""
}

// renderError maps domain and store failures to HTTP responses. Missing
// and foreign records get the same answer so record existence never
// leaks across owners.
func renderError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound), errors.Is(err, store.ErrForbidden):
		writeError(w, http.StatusNotFound, "transaction not found")
	case errors.Is(err, store.ErrUnavailable):
		writeError(w, http.StatusServiceUnavailable, "service temporarily unavailable, please try again")
	case isValidation(err):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		slog.ErrorContext(r.Context(), "Request failed", "url", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func isValidation(err error) bool {
	return errors.Is(err, core.ErrInvalidAmount) ||
		errors.Is(err, core.ErrInvalidKind) ||
		errors.Is(err, core.ErrMissingCategory) ||
		errors.Is(err, core.ErrMissingOwner)
}
