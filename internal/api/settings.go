// internal/api/settings.go
package api

import (
	"net/http"

	"devboard/internal/settings"
)

// getWeatherSettings returns the caller's weather preferences.
// GET /v1/settings/weather
func (h *Handler) getWeatherSettings(w http.ResponseWriter, r *http.Request) {
	s, err := h.Settings.Weather(r.Context(), identity(r).UserID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, s)
}

// updateWeatherSettings merges the provided preferences.
// PATCH /v1/settings/weather
func (h *Handler) updateWeatherSettings(w http.ResponseWriter, r *http.Request) {
	var p settings.WeatherPatch
	if err := decodeJSON(r, &p); err != nil {
		h.writeError(w, r, err)
		return
	}
	s, err := h.Settings.UpdateWeather(r.Context(), identity(r).UserID, p)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, s)
}
