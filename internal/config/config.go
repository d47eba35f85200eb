// internal/config/config.go
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	LogLevel        string        `mapstructure:"LOG_LEVEL"`
	HTTPAddr        string        `mapstructure:"HTTP_ADDR"`
	ShutdownTimeout time.Duration `mapstructure:"SHUTDOWN_TIMEOUT"`
	DBURL           string        `mapstructure:"DB_URL"`
	MigrationsPath  string        `mapstructure:"MIGRATIONS_PATH"`

	GithubToken        string  `mapstructure:"GITHUB_ACCESS_TOKEN"`
	GithubClientID     string  `mapstructure:"GITHUB_CLIENT_ID"`
	GithubClientSecret string  `mapstructure:"GITHUB_CLIENT_SECRET"`
	OAuthRedirectURL   string  `mapstructure:"OAUTH_REDIRECT_URL"`
	GithubAPIURL       string  `mapstructure:"GITHUB_API_URL"`
	GithubRateLimit    float64 `mapstructure:"GITHUB_RATE_LIMIT"`

	CommitActivityRetryDelay time.Duration `mapstructure:"COMMIT_ACTIVITY_RETRY_DELAY"`
	StatsRepoLimit           int           `mapstructure:"STATS_REPO_LIMIT"`
	StatsWeeks               int           `mapstructure:"STATS_WEEKS"`
	StatsMinLanguageShare    float64       `mapstructure:"STATS_MIN_LANGUAGE_SHARE"`
	StatsConcurrency         int           `mapstructure:"STATS_CONCURRENCY"`

	WeatherAPIKey      string `mapstructure:"OPENWEATHER_API_KEY"`
	WeatherAPIURL      string `mapstructure:"WEATHER_API_URL"`
	WeatherDefaultCity string `mapstructure:"WEATHER_DEFAULT_CITY"`

	HNAPIURL string `mapstructure:"HN_API_URL"`

	CacheEnabled        bool          `mapstructure:"CACHE_ENABLED"`
	SessionTTL          time.Duration `mapstructure:"SESSION_TTL"`
	SessionCookieSecure bool          `mapstructure:"SESSION_COOKIE_SECURE"`
}

var defaults = map[string]any{
	"LOG_LEVEL":                   "info",
	"HTTP_ADDR":                   ":8080",
	"SHUTDOWN_TIMEOUT":            "10s",
	"DB_URL":                      "",
	"MIGRATIONS_PATH":             "file://migrations",
	"GITHUB_ACCESS_TOKEN":         "",
	"GITHUB_CLIENT_ID":            "",
	"GITHUB_CLIENT_SECRET":        "",
	"OAUTH_REDIRECT_URL":          "http://localhost:8080/auth/github/callback",
	"GITHUB_API_URL":              "",
	"GITHUB_RATE_LIMIT":           10.0,
	"COMMIT_ACTIVITY_RETRY_DELAY": "2s",
	"STATS_REPO_LIMIT":            8,
	"STATS_WEEKS":                 12,
	"STATS_MIN_LANGUAGE_SHARE":    2.0,
	"STATS_CONCURRENCY":           8,
	"OPENWEATHER_API_KEY":         "",
	"WEATHER_API_URL":             "https://api.openweathermap.org/data/2.5",
	"WEATHER_DEFAULT_CITY":        "Paris",
	"HN_API_URL":                  "https://hacker-news.firebaseio.com/v0",
	"CACHE_ENABLED":               true,
	"SESSION_TTL":                 "720h",
	"SESSION_COOKIE_SECURE":       false,
}

// LoadConfig reads configuration from file and/or environment variables.
func LoadConfig() (*Config, error) {
	v := viper.New()

	// Every key needs a default, otherwise AutomaticEnv values are invisible to Unmarshal.
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	// Load from .env file if it exists
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // Ignore error if file not found

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.DBURL == "" {
		return errors.New("DB_URL is a required configuration field")
	}
	if c.GithubClientID == "" || c.GithubClientSecret == "" {
		return errors.New("GITHUB_CLIENT_ID and GITHUB_CLIENT_SECRET are required configuration fields")
	}
	if c.StatsRepoLimit <= 0 || c.StatsRepoLimit > 50 {
		return errors.New("STATS_REPO_LIMIT must be between 1 and 50")
	}
	if c.StatsWeeks <= 0 {
		return errors.New("STATS_WEEKS must be positive")
	}
	if c.StatsMinLanguageShare < 0 || c.StatsMinLanguageShare > 100 {
		return errors.New("STATS_MIN_LANGUAGE_SHARE must be a percentage between 0 and 100")
	}
	if c.GithubRateLimit <= 0 {
		return errors.New("GITHUB_RATE_LIMIT must be positive")
	}
	return nil
}
