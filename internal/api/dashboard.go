// internal/api/dashboard.go
package api

import (
	"net/http"
	"strings"

	"devboard/internal/github"
	"devboard/internal/hn"
	"devboard/internal/weather"
)

const maxRepoLimit = 50

func sortParam(r *http.Request) string {
	if strings.EqualFold(r.URL.Query().Get("sort"), github.SortStars) {
		return github.SortStars
	}
	return github.SortUpdated
}

// getGithubProfile returns the GitHub profile linked to the session.
// GET /v1/github/profile
func (h *Handler) getGithubProfile(w http.ResponseWriter, r *http.Request) {
	token := h.Tokens.GitHubToken(r.Context(), identity(r).UserID)
	profile, err := h.GitHub.Profile(r.Context(), token)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, profile)
}

// getGithubRepos lists owned, non-fork repositories.
// GET /v1/github/repos?sort=updated|stars&limit=N
func (h *Handler) getGithubRepos(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 0, 1, maxRepoLimit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	token := h.Tokens.GitHubToken(r.Context(), identity(r).UserID)
	repos, err := h.GitHub.Repositories(r.Context(), token, sortParam(r), limit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, repos)
}

// getGithubStats returns the profile with per-repository activity and languages.
// GET /v1/github/stats?sort=updated|stars&limit=N
func (h *Handler) getGithubStats(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 0, 1, maxRepoLimit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	token := h.Tokens.GitHubToken(r.Context(), identity(r).UserID)
	dashboard, err := h.GitHub.Dashboard(r.Context(), token, sortParam(r), limit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, dashboard)
}

// getNews lists Hacker News stories.
// GET /v1/news?list=top|new|best&limit=N
func (h *Handler) getNews(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", hn.DefaultLimit, 1, hn.MaxLimit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	stories, err := h.News.Stories(r.Context(), hn.ParseList(r.URL.Query().Get("list")), limit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, stories)
}

// getWeather proxies current conditions and the forecast.
// Without an explicit location a signed-in user's saved city and units are used.
// GET /v1/weather?lat=..&lon=..|q=..&units=metric|imperial
func (h *Handler) getWeather(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	q := weather.Query{
		Lat:   query.Get("lat"),
		Lon:   query.Get("lon"),
		Place: query.Get("q"),
		Units: query.Get("units"),
	}

	if q.Place == "" && (q.Lat == "" || q.Lon == "") {
		if id, err := h.Sessions.Identify(r); err == nil {
			if saved, err := h.Settings.Weather(r.Context(), id.UserID); err == nil {
				if saved.City != nil {
					q.Place = *saved.City
				}
				if q.Units == "" {
					q.Units = string(saved.Units)
				}
			}
		}
	}

	report, err := h.Weather.Lookup(r.Context(), q)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, report)
}
