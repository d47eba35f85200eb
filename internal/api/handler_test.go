// internal/api/handler_test.go
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"devboard/internal/auth"
	custom_errors "devboard/internal/errors"
	"devboard/internal/hn"
	"devboard/internal/model"
	"devboard/internal/notes"
	"devboard/internal/settings"
	"devboard/internal/weather"
)

const validSession = "good-session"

// fakeSessions accepts a single session cookie value.
type fakeSessions struct {
	ended bool
}

func (f *fakeSessions) Identify(r *http.Request) (*auth.Identity, error) {
	c, err := r.Cookie(auth.SessionCookie)
	if err != nil || c.Value != validSession {
		return nil, custom_errors.ErrUnauthorized
	}
	return &auth.Identity{UserID: "user-1", Email: "octo@example.com"}, nil
}
func (f *fakeSessions) Start(ctx context.Context, w http.ResponseWriter, id *auth.Identity) error {
	http.SetCookie(w, &http.Cookie{Name: auth.SessionCookie, Value: validSession})
	return nil
}
func (f *fakeSessions) End(w http.ResponseWriter, r *http.Request) error {
	f.ended = true
	return nil
}

type MockLogin struct{ mock.Mock }

func (m *MockLogin) AuthCodeURL(state string) string {
	return m.Called(state).String(0)
}
func (m *MockLogin) Complete(ctx context.Context, code string) (*auth.Identity, error) {
	args := m.Called(ctx, code)
	id, _ := args.Get(0).(*auth.Identity)
	return id, args.Error(1)
}

type staticTokens string

func (s staticTokens) GitHubToken(ctx context.Context, userID string) string { return string(s) }

type MockGitHub struct{ mock.Mock }

func (m *MockGitHub) Profile(ctx context.Context, token string) (*model.Profile, error) {
	args := m.Called(ctx, token)
	p, _ := args.Get(0).(*model.Profile)
	return p, args.Error(1)
}
func (m *MockGitHub) Repositories(ctx context.Context, token, sortBy string, limit int) ([]model.Repository, error) {
	args := m.Called(ctx, token, sortBy, limit)
	repos, _ := args.Get(0).([]model.Repository)
	return repos, args.Error(1)
}
func (m *MockGitHub) Dashboard(ctx context.Context, token, sortBy string, limit int) (*model.Dashboard, error) {
	args := m.Called(ctx, token, sortBy, limit)
	d, _ := args.Get(0).(*model.Dashboard)
	return d, args.Error(1)
}

type MockNews struct{ mock.Mock }

func (m *MockNews) Stories(ctx context.Context, list hn.List, limit int) ([]model.Story, error) {
	args := m.Called(ctx, list, limit)
	s, _ := args.Get(0).([]model.Story)
	return s, args.Error(1)
}

type MockWeather struct{ mock.Mock }

func (m *MockWeather) Lookup(ctx context.Context, q weather.Query) (*weather.Report, error) {
	args := m.Called(ctx, q)
	r, _ := args.Get(0).(*weather.Report)
	return r, args.Error(1)
}

type MockNotes struct{ mock.Mock }

func (m *MockNotes) List(ctx context.Context, userID string) ([]model.Note, error) {
	args := m.Called(ctx, userID)
	n, _ := args.Get(0).([]model.Note)
	return n, args.Error(1)
}
func (m *MockNotes) Create(ctx context.Context, userID string, in notes.NewNote) (*model.Note, error) {
	args := m.Called(ctx, userID, in)
	n, _ := args.Get(0).(*model.Note)
	return n, args.Error(1)
}
func (m *MockNotes) Update(ctx context.Context, userID string, id int64, p notes.Patch) (*model.Note, error) {
	args := m.Called(ctx, userID, id, p)
	n, _ := args.Get(0).(*model.Note)
	return n, args.Error(1)
}
func (m *MockNotes) Delete(ctx context.Context, userID string, id int64) error {
	return m.Called(ctx, userID, id).Error(0)
}

type MockSettings struct{ mock.Mock }

func (m *MockSettings) Weather(ctx context.Context, userID string) (*model.WeatherSettings, error) {
	args := m.Called(ctx, userID)
	s, _ := args.Get(0).(*model.WeatherSettings)
	return s, args.Error(1)
}
func (m *MockSettings) UpdateWeather(ctx context.Context, userID string, p settings.WeatherPatch) (*model.WeatherSettings, error) {
	args := m.Called(ctx, userID, p)
	s, _ := args.Get(0).(*model.WeatherSettings)
	return s, args.Error(1)
}

type testDeps struct {
	sessions *fakeSessions
	login    *MockLogin
	github   *MockGitHub
	news     *MockNews
	weather  *MockWeather
	notes    *MockNotes
	settings *MockSettings
}

func newTestRouter() (http.Handler, *testDeps) {
	d := &testDeps{
		sessions: &fakeSessions{},
		login:    new(MockLogin),
		github:   new(MockGitHub),
		news:     new(MockNews),
		weather:  new(MockWeather),
		notes:    new(MockNotes),
		settings: new(MockSettings),
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	router := NewRouter(Deps{
		Sessions: d.sessions,
		Login:    d.login,
		Tokens:   staticTokens("gho_user"),
		GitHub:   d.github,
		News:     d.news,
		Weather:  d.weather,
		Notes:    d.notes,
		Settings: d.settings,
	}, logger)
	return router, d
}

func do(router http.Handler, method, target, body string, signedIn bool) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if signedIn {
		req.AddCookie(&http.Cookie{Name: auth.SessionCookie, Value: validSession})
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["error"]
}

func TestHealthCheck(t *testing.T) {
	router, _ := newTestRouter()

	rec := do(router, http.MethodGet, "/health", "", false)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	router, d := newTestRouter()

	for _, route := range []struct{ method, path string }{
		{http.MethodGet, "/v1/me"},
		{http.MethodGet, "/v1/github/stats"},
		{http.MethodGet, "/v1/news"},
		{http.MethodGet, "/v1/notes"},
		{http.MethodPost, "/v1/notes"},
		{http.MethodPatch, "/v1/notes/1"},
		{http.MethodDelete, "/v1/notes/1"},
		{http.MethodGet, "/v1/settings/weather"},
	} {
		t.Run(route.method+" "+route.path, func(t *testing.T) {
			rec := do(router, route.method, route.path, "", false)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, "Unauthorized", errorBody(t, rec))
		})
	}
	d.notes.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
	d.github.AssertNotCalled(t, "Dashboard", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestGetMe(t *testing.T) {
	router, _ := newTestRouter()

	rec := do(router, http.MethodGet, "/v1/me", "", true)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":"user-1","email":"octo@example.com"}`, rec.Body.String())
}

func TestNotesHandlers(t *testing.T) {
	t.Run("create returns 201", func(t *testing.T) {
		router, d := newTestRouter()
		d.notes.On("Create", mock.Anything, "user-1", notes.NewNote{Title: "Ship it"}).
			Return(&model.Note{ID: 7, UserID: "user-1", Title: "Ship it", Status: model.NoteTodo}, nil).Once()

		rec := do(router, http.MethodPost, "/v1/notes", `{"title":"Ship it"}`, true)

		assert.Equal(t, http.StatusCreated, rec.Code)
		var note model.Note
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &note))
		assert.Equal(t, int64(7), note.ID)
		assert.Equal(t, model.NoteTodo, note.Status)
		d.notes.AssertExpectations(t)
	})

	t.Run("empty title is a bad request", func(t *testing.T) {
		router, d := newTestRouter()
		d.notes.On("Create", mock.Anything, "user-1", notes.NewNote{}).
			Return(nil, custom_errors.NewValidationError("title", "Title is required")).Once()

		rec := do(router, http.MethodPost, "/v1/notes", `{"title":""}`, true)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Title is required", errorBody(t, rec))
	})

	t.Run("malformed body is a bad request", func(t *testing.T) {
		router, d := newTestRouter()

		rec := do(router, http.MethodPost, "/v1/notes", `{"title":`, true)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		d.notes.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("invalid id is a bad request", func(t *testing.T) {
		router, d := newTestRouter()

		rec := do(router, http.MethodPatch, "/v1/notes/abc", `{"title":"x"}`, true)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Invalid ID", errorBody(t, rec))

		rec = do(router, http.MethodDelete, "/v1/notes/0", "", true)
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		d.notes.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("foreign note is not found", func(t *testing.T) {
		router, d := newTestRouter()
		d.notes.On("Update", mock.Anything, "user-1", int64(9), mock.Anything).Return(nil, custom_errors.ErrNotFound).Once()
		d.notes.On("Delete", mock.Anything, "user-1", int64(9)).Return(custom_errors.ErrNotFound).Once()

		rec := do(router, http.MethodPatch, "/v1/notes/9", `{"status":"DONE"}`, true)
		assert.Equal(t, http.StatusNotFound, rec.Code)

		rec = do(router, http.MethodDelete, "/v1/notes/9", "", true)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		d.notes.AssertExpectations(t)
	})

	t.Run("delete returns ok", func(t *testing.T) {
		router, d := newTestRouter()
		d.notes.On("Delete", mock.Anything, "user-1", int64(4)).Return(nil).Once()

		rec := do(router, http.MethodDelete, "/v1/notes/4", "", true)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"ok":true}`, rec.Body.String())
	})

	t.Run("unexpected errors are hidden", func(t *testing.T) {
		router, d := newTestRouter()
		d.notes.On("List", mock.Anything, "user-1").Return(nil, errors.New("pool exhausted")).Once()

		rec := do(router, http.MethodGet, "/v1/notes", "", true)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "Internal server error", errorBody(t, rec))
	})
}

func TestSettingsHandlers(t *testing.T) {
	router, d := newTestRouter()
	city := "Oslo"
	units := model.UnitsImperial
	d.settings.On("UpdateWeather", mock.Anything, "user-1", settings.WeatherPatch{City: &city, Units: &units}).
		Return(&model.WeatherSettings{City: &city, Units: units}, nil).Once()
	kelvin := model.Units("kelvin")
	d.settings.On("UpdateWeather", mock.Anything, "user-1", settings.WeatherPatch{Units: &kelvin}).
		Return(nil, custom_errors.NewValidationError("weatherUnits", "Invalid units")).Once()

	rec := do(router, http.MethodPatch, "/v1/settings/weather", `{"weatherCity":"Oslo","weatherUnits":"imperial"}`, true)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"weatherCity":"Oslo","weatherUnits":"imperial"}`, rec.Body.String())

	rec = do(router, http.MethodPatch, "/v1/settings/weather", `{"weatherUnits":"kelvin"}`, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid units", errorBody(t, rec))
	d.settings.AssertExpectations(t)
}

func TestGithubStatsHandler(t *testing.T) {
	t.Run("passes sort and limit with the linked token", func(t *testing.T) {
		router, d := newTestRouter()
		d.github.On("Dashboard", mock.Anything, "gho_user", "stars", 5).
			Return(&model.Dashboard{User: model.Profile{Login: "octo"}, Repos: []model.RepoStats{}}, nil).Once()

		rec := do(router, http.MethodGet, "/v1/github/stats?sort=stars&limit=5", "", true)

		assert.Equal(t, http.StatusOK, rec.Code)
		var body model.Dashboard
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "octo", body.User.Login)
		d.github.AssertExpectations(t)
	})

	t.Run("out of range limit is rejected", func(t *testing.T) {
		router, d := newTestRouter()

		rec := do(router, http.MethodGet, "/v1/github/stats?limit=500", "", true)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		d.github.AssertNotCalled(t, "Dashboard", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("upstream failure is a bad gateway", func(t *testing.T) {
		router, d := newTestRouter()
		d.github.On("Repositories", mock.Anything, "gho_user", "updated", 0).
			Return(nil, &custom_errors.UpstreamError{Service: "github", StatusCode: 401, Err: errors.New("bad credentials")}).Once()

		rec := do(router, http.MethodGet, "/v1/github/repos", "", true)

		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})
}

func TestNewsHandler(t *testing.T) {
	router, d := newTestRouter()
	d.news.On("Stories", mock.Anything, hn.ListBest, hn.DefaultLimit).
		Return([]model.Story{{ID: 1, Type: "story", Title: "Go 2"}}, nil).Once()

	rec := do(router, http.MethodGet, "/v1/news?list=best", "", true)

	assert.Equal(t, http.StatusOK, rec.Code)
	var stories []model.Story
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stories))
	require.Len(t, stories, 1)
	assert.Equal(t, "Go 2", stories[0].Title)
	d.news.AssertExpectations(t)
}

func TestNewsHandler_LimitBounds(t *testing.T) {
	router, d := newTestRouter()
	d.news.On("Stories", mock.Anything, hn.ListTop, hn.MaxLimit).Return([]model.Story{}, nil).Once()

	rec := do(router, http.MethodGet, fmt.Sprintf("/v1/news?limit=%d", hn.MaxLimit), "", true)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(router, http.MethodGet, fmt.Sprintf("/v1/news?limit=%d", hn.MaxLimit+1), "", true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	d.news.AssertExpectations(t)
}

func TestWeatherHandler(t *testing.T) {
	t.Run("explicit query needs no session", func(t *testing.T) {
		router, d := newTestRouter()
		d.weather.On("Lookup", mock.Anything, weather.Query{Place: "Rome", Units: "imperial"}).
			Return(&weather.Report{Units: model.UnitsImperial}, nil).Once()

		rec := do(router, http.MethodGet, "/v1/weather?q=Rome&units=imperial", "", false)

		assert.Equal(t, http.StatusOK, rec.Code)
		d.weather.AssertExpectations(t)
	})

	t.Run("saved settings fill in a missing location", func(t *testing.T) {
		router, d := newTestRouter()
		city := "Lyon"
		d.settings.On("Weather", mock.Anything, "user-1").
			Return(&model.WeatherSettings{City: &city, Units: model.UnitsMetric}, nil).Once()
		d.weather.On("Lookup", mock.Anything, weather.Query{Place: "Lyon", Units: "metric"}).
			Return(&weather.Report{Units: model.UnitsMetric}, nil).Once()

		rec := do(router, http.MethodGet, "/v1/weather", "", true)

		assert.Equal(t, http.StatusOK, rec.Code)
		d.weather.AssertExpectations(t)
	})

	t.Run("upstream error is a bad gateway", func(t *testing.T) {
		router, d := newTestRouter()
		d.weather.On("Lookup", mock.Anything, mock.Anything).
			Return(nil, &custom_errors.UpstreamError{Service: "openweathermap", StatusCode: 404, Body: `{"message":"city not found"}`}).Once()

		rec := do(router, http.MethodGet, "/v1/weather?q=Nowhere", "", false)

		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})

	t.Run("missing api key is a server error", func(t *testing.T) {
		router, d := newTestRouter()
		d.weather.On("Lookup", mock.Anything, mock.Anything).Return(nil, custom_errors.ErrNotConfigured).Once()

		rec := do(router, http.MethodGet, "/v1/weather?q=Rome", "", false)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestAuthFlow(t *testing.T) {
	t.Run("login sets state and redirects", func(t *testing.T) {
		router, d := newTestRouter()
		d.login.On("AuthCodeURL", mock.AnythingOfType("string")).Return("https://github.com/login/oauth/authorize?x=1").Once()

		rec := do(router, http.MethodGet, "/auth/github/login", "", false)

		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "https://github.com/login/oauth/authorize?x=1", rec.Header().Get("Location"))
		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, stateCookie, cookies[0].Name)
		assert.NotEmpty(t, cookies[0].Value)
	})

	t.Run("callback rejects a mismatched state", func(t *testing.T) {
		router, d := newTestRouter()
		req := httptest.NewRequest(http.MethodGet, "/auth/github/callback?code=abc&state=evil", nil)
		req.AddCookie(&http.Cookie{Name: stateCookie, Value: "expected"})
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		d.login.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
	})

	t.Run("callback starts a session", func(t *testing.T) {
		router, d := newTestRouter()
		d.login.On("Complete", mock.Anything, "abc").Return(&auth.Identity{UserID: "user-1"}, nil).Once()
		req := httptest.NewRequest(http.MethodGet, "/auth/github/callback?code=abc&state=s1", nil)
		req.AddCookie(&http.Cookie{Name: stateCookie, Value: "s1"})
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/", rec.Header().Get("Location"))
		var session *http.Cookie
		for _, c := range rec.Result().Cookies() {
			if c.Name == auth.SessionCookie {
				session = c
			}
		}
		require.NotNil(t, session)
		assert.Equal(t, validSession, session.Value)
	})

	t.Run("logout ends the session", func(t *testing.T) {
		router, d := newTestRouter()

		rec := do(router, http.MethodPost, "/auth/logout", "", true)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.True(t, d.sessions.ended)
	})
}
