// internal/api/respond.go
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	custom_errors "devboard/internal/errors"
)

func respondWithJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, status int, message string) {
	respondWithJSON(w, status, map[string]string{"error": message})
}

// writeError maps the error taxonomy onto HTTP statuses.
// Unexpected errors are logged and answered with a generic 500.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validationErr *custom_errors.ValidationError
		upstreamErr   *custom_errors.UpstreamError
	)
	switch {
	case errors.Is(err, custom_errors.ErrUnauthorized):
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
	case errors.Is(err, custom_errors.ErrNotFound):
		respondWithError(w, http.StatusNotFound, "Not found")
	case errors.As(err, &validationErr):
		respondWithError(w, http.StatusBadRequest, validationErr.Message)
	case errors.Is(err, custom_errors.ErrNotConfigured):
		h.logger.Error("Service not configured", "path", r.URL.Path, "error", err)
		respondWithError(w, http.StatusInternalServerError, err.Error())
	case errors.As(err, &upstreamErr):
		h.logger.Warn("Upstream request failed", "path", r.URL.Path, "service", upstreamErr.Service, "status", upstreamErr.StatusCode, "error", err)
		respondWithError(w, http.StatusBadGateway, upstreamErr.Error())
	default:
		h.logger.Error("Request failed", "path", r.URL.Path, "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// decodeJSON reads a JSON request body into dst.
func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return custom_errors.NewValidationError("body", "Invalid JSON body")
	}
	return nil
}

// queryInt parses an optional integer query parameter within [lo, hi].
// A missing parameter returns def.
func queryInt(r *http.Request, name string, def, lo, hi int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < lo || v > hi {
		return 0, custom_errors.NewValidationError(name,
			"Invalid '"+name+"' parameter. Must be an integer between "+strconv.Itoa(lo)+" and "+strconv.Itoa(hi)+".")
	}
	return v, nil
}
