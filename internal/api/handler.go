// internal/api/handler.go
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"devboard/internal/auth"
	"devboard/internal/hn"
	"devboard/internal/model"
	"devboard/internal/notes"
	"devboard/internal/settings"
	"devboard/internal/weather"
)

// SessionProvider resolves and issues login sessions.
type SessionProvider interface {
	Identify(r *http.Request) (*auth.Identity, error)
	Start(ctx context.Context, w http.ResponseWriter, id *auth.Identity) error
	End(w http.ResponseWriter, r *http.Request) error
}

// LoginFlow is the GitHub OAuth authorization-code flow.
type LoginFlow interface {
	AuthCodeURL(state string) string
	Complete(ctx context.Context, code string) (*auth.Identity, error)
}

// TokenSource finds the GitHub token linked to a user.
type TokenSource interface {
	GitHubToken(ctx context.Context, userID string) string
}

// GitHubStats serves the GitHub dashboard data.
type GitHubStats interface {
	Profile(ctx context.Context, token string) (*model.Profile, error)
	Repositories(ctx context.Context, token, sortBy string, limit int) ([]model.Repository, error)
	Dashboard(ctx context.Context, token, sortBy string, limit int) (*model.Dashboard, error)
}

// NewsSource lists Hacker News stories.
type NewsSource interface {
	Stories(ctx context.Context, list hn.List, limit int) ([]model.Story, error)
}

// WeatherSource proxies weather lookups.
type WeatherSource interface {
	Lookup(ctx context.Context, q weather.Query) (*weather.Report, error)
}

// NotesService is note CRUD scoped to one user.
type NotesService interface {
	List(ctx context.Context, userID string) ([]model.Note, error)
	Create(ctx context.Context, userID string, in notes.NewNote) (*model.Note, error)
	Update(ctx context.Context, userID string, id int64, p notes.Patch) (*model.Note, error)
	Delete(ctx context.Context, userID string, id int64) error
}

// SettingsService reads and writes per-user settings.
type SettingsService interface {
	Weather(ctx context.Context, userID string) (*model.WeatherSettings, error)
	UpdateWeather(ctx context.Context, userID string, p settings.WeatherPatch) (*model.WeatherSettings, error)
}

// Deps are the collaborators behind the HTTP API.
type Deps struct {
	Sessions SessionProvider
	Login    LoginFlow
	Tokens   TokenSource
	GitHub   GitHubStats
	News     NewsSource
	Weather  WeatherSource
	Notes    NotesService
	Settings SettingsService

	SecureCookies bool
}

// Handler is the container for API dependencies.
type Handler struct {
	Deps
	logger *slog.Logger
}

// NewRouter creates and configures a new chi router with all API routes.
func NewRouter(deps Deps, logger *slog.Logger) http.Handler {
	h := &Handler{
		Deps:   deps,
		logger: logger,
	}

	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger) // Chi's default logger
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/health", h.healthCheck)

	r.Route("/auth", func(r chi.Router) {
		r.Get("/github/login", h.login)
		r.Get("/github/callback", h.callback)
		r.Post("/logout", h.logout)
	})

	r.Route("/v1", func(r chi.Router) {
		r.Get("/weather", h.getWeather)

		r.Group(func(r chi.Router) {
			r.Use(h.requireIdentity)

			r.Get("/me", h.getMe)

			r.Get("/github/profile", h.getGithubProfile)
			r.Get("/github/repos", h.getGithubRepos)
			r.Get("/github/stats", h.getGithubStats)

			r.Get("/news", h.getNews)

			r.Get("/notes", h.listNotes)
			r.Post("/notes", h.createNote)
			r.Patch("/notes/{id}", h.updateNote)
			r.Delete("/notes/{id}", h.deleteNote)

			r.Get("/settings/weather", h.getWeatherSettings)
			r.Patch("/settings/weather", h.updateWeatherSettings)
		})
	})

	return r
}

// healthCheck is a simple health endpoint.
func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// requireIdentity rejects requests without a valid session and stores the identity in the context.
func (h *Handler) requireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := h.Sessions.Identify(r)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), id)))
	})
}

// identity returns the identity placed by requireIdentity.
func identity(r *http.Request) *auth.Identity {
	id, _ := auth.FromContext(r.Context())
	return id
}

// getMe returns the authenticated identity.
// GET /v1/me
func (h *Handler) getMe(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, identity(r))
}
