// internal/weather/client.go
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"devboard/internal/cache"
	custom_errors "devboard/internal/errors"
	"devboard/internal/model"
)

const (
	// DefaultBaseURL is the OpenWeatherMap 2.5 API root.
	DefaultBaseURL = "https://api.openweathermap.org/data/2.5"
	// DefaultPlace is used when a lookup names neither coordinates nor a place.
	DefaultPlace = "Paris"

	responseTTL  = 10 * time.Minute
	maxErrorBody = 4 << 10
)

// Query selects a location and unit system.
// Coordinates win over Place when both Lat and Lon are set.
type Query struct {
	Lat   string
	Lon   string
	Place string
	Units string
}

// Report is the reshaped weather response.
// Current is the upstream current-conditions object, passed through unchanged.
type Report struct {
	Units   model.Units     `json:"units"`
	Current json.RawMessage `json:"current"`
	Hourly  []Hour          `json:"hourly"`
	Daily   []Day           `json:"daily"`
}

// Service proxies the OpenWeatherMap API.
type Service struct {
	httpClient   *http.Client
	baseURL      string
	apiKey       string
	defaultPlace string
	cache        *cache.Cache
	logger       *slog.Logger
}

// NewService creates a new weather Service.
func NewService(apiKey, baseURL, defaultPlace string, httpClient *http.Client, cc *cache.Cache, logger *slog.Logger) *Service {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if defaultPlace == "" {
		defaultPlace = DefaultPlace
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Service{
		httpClient:   httpClient,
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		apiKey:       apiKey,
		defaultPlace: defaultPlace,
		cache:        cc,
		logger:       logger,
	}
}

// ParseUnits maps a query value to a unit system, defaulting to metric.
func ParseUnits(s string) model.Units {
	if u := model.Units(s); u.Valid() {
		return u
	}
	return model.UnitsMetric
}

// Params builds the upstream query parameters for q, without the API key.
func (s *Service) Params(q Query) url.Values {
	params := url.Values{}
	params.Set("units", string(ParseUnits(q.Units)))
	switch {
	case q.Lat != "" && q.Lon != "":
		params.Set("lat", q.Lat)
		params.Set("lon", q.Lon)
	case strings.TrimSpace(q.Place) != "":
		params.Set("q", strings.TrimSpace(q.Place))
	default:
		params.Set("q", s.defaultPlace)
	}
	return params
}

// Lookup fetches current conditions and the forecast concurrently and reshapes them.
func (s *Service) Lookup(ctx context.Context, q Query) (*Report, error) {
	if s.apiKey == "" {
		return nil, fmt.Errorf("OPENWEATHER_API_KEY: %w", custom_errors.ErrNotConfigured)
	}
	params := s.Params(q)

	var (
		current  json.RawMessage
		forecast Forecast
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.get(gctx, "/weather", params, &current)
	})
	g.Go(func() error {
		return s.get(gctx, "/forecast", params, &forecast)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	hourly, daily := Summarize(forecast)
	s.logger.Debug("Weather lookup", "query", params.Encode(), "hourly", len(hourly), "daily", len(daily))
	return &Report{
		Units:   model.Units(params.Get("units")),
		Current: current,
		Hourly:  hourly,
		Daily:   daily,
	}, nil
}

func (s *Service) get(ctx context.Context, path string, params url.Values, dst any) error {
	key := cache.Key("", "weather"+path+"?"+params.Encode())
	if v, ok := s.cache.Get(key); ok {
		return json.Unmarshal(v.([]byte), dst)
	}

	withKey := url.Values{}
	for k, v := range params {
		withKey[k] = v
	}
	withKey.Set("appid", s.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+path+"?"+withKey.Encode(), nil)
	if err != nil {
		return err
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return &custom_errors.UpstreamError{Service: "weather", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &custom_errors.UpstreamError{Service: "weather", StatusCode: resp.StatusCode, Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody]
		}
		return &custom_errors.UpstreamError{
			Service:    "weather",
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		}
	}

	if err := json.Unmarshal(body, dst); err != nil {
		return &custom_errors.UpstreamError{Service: "weather", StatusCode: resp.StatusCode, Err: fmt.Errorf("decode %s: %w", path, err)}
	}
	s.cache.Set(key, body, responseTTL)
	return nil
}
