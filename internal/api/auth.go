// internal/api/auth.go
package api

import (
	"net/http"
	"time"

	"devboard/internal/auth"
)

const (
	stateCookie = "devboard_oauth_state"
	stateTTL    = 10 * time.Minute
)

// login redirects to GitHub's consent page.
// GET /auth/github/login
func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	state := auth.NewState()
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/auth",
		MaxAge:   int(stateTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, h.Login.AuthCodeURL(state), http.StatusFound)
}

// callback finishes the OAuth flow and starts a session.
// GET /auth/github/callback
func (h *Handler) callback(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(stateCookie)
	state := r.URL.Query().Get("state")
	if err != nil || state == "" || cookie.Value != state {
		respondWithError(w, http.StatusBadRequest, "Invalid OAuth state")
		return
	}
	http.SetCookie(w, &http.Cookie{Name: stateCookie, Value: "", Path: "/auth", MaxAge: -1})

	code := r.URL.Query().Get("code")
	if code == "" {
		respondWithError(w, http.StatusBadRequest, "Missing 'code' parameter")
		return
	}

	id, err := h.Login.Complete(r.Context(), code)
	if err != nil {
		h.logger.Warn("GitHub login failed", "error", err)
		respondWithError(w, http.StatusUnauthorized, "GitHub login failed")
		return
	}
	if err := h.Sessions.Start(r.Context(), w, id); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.logger.Info("User signed in", "user_id", id.UserID)
	http.Redirect(w, r, "/", http.StatusFound)
}

// logout ends the current session.
// POST /auth/logout
func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	if err := h.Sessions.End(w, r); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
