// cmd/service/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"

	"devboard/internal/api"
	"devboard/internal/auth"
	"devboard/internal/cache"
	"devboard/internal/config"
	"devboard/internal/database"
	"devboard/internal/github"
	"devboard/internal/hn"
	"devboard/internal/notes"
	"devboard/internal/settings"
	"devboard/internal/stats"
	"devboard/internal/weather"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Application startup error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Initialize structured logger
	logLevel := new(slog.LevelVar)
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	logger := slog.New(handler)
	slog.SetDefault(logger)

	// 2. Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	setLogLevel(cfg.LogLevel, logLevel)
	logger.Info("Configuration loaded successfully")

	// 3. Setup context for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// 4. Initialize database connection and run migrations
	dbpool, err := pgxpool.New(ctx, cfg.DBURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer dbpool.Close()
	logger.Info("Database connection established")

	if err := runMigrations(cfg.MigrationsPath, cfg.DBURL); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}
	logger.Info("Database migrations applied successfully")

	// 5. Initialize application components
	queries := database.New(dbpool)
	responses := cache.New(cfg.CacheEnabled)
	httpClient := &http.Client{}

	ghOpts := []github.Option{
		github.WithHTTPClient(httpClient),
		github.WithRateLimit(cfg.GithubRateLimit),
		github.WithRetryDelay(cfg.CommitActivityRetryDelay),
		github.WithCache(responses),
	}
	if cfg.GithubAPIURL != "" {
		ghOpts = append(ghOpts, github.WithBaseURL(cfg.GithubAPIURL))
	}
	ghClient, err := github.NewClient(cfg.GithubToken, logger, ghOpts...)
	if err != nil {
		return fmt.Errorf("failed to create github client: %w", err)
	}

	aggregator := stats.NewAggregator(ghClient, logger, stats.Options{
		Weeks:           cfg.StatsWeeks,
		MinSharePercent: cfg.StatsMinLanguageShare,
		Concurrency:     cfg.StatsConcurrency,
		RepoLimit:       cfg.StatsRepoLimit,
	})

	router := api.NewRouter(api.Deps{
		Sessions:      auth.NewSessions(queries, cfg.SessionTTL, cfg.SessionCookieSecure, logger),
		Login:         auth.NewOAuth(cfg.GithubClientID, cfg.GithubClientSecret, cfg.OAuthRedirectURL, ghClient, auth.NewTxStore(dbpool, queries), logger),
		Tokens:        auth.NewTokens(queries, logger),
		GitHub:        aggregator,
		News:          hn.NewClient(cfg.HNAPIURL, httpClient, responses, logger),
		Weather:       weather.NewService(cfg.WeatherAPIKey, cfg.WeatherAPIURL, cfg.WeatherDefaultCity, httpClient, responses, logger),
		Notes:         notes.NewService(queries, logger),
		Settings:      settings.NewService(queries),
		SecureCookies: cfg.SessionCookieSecure,
	}, logger)

	if cfg.WeatherAPIKey == "" {
		logger.Warn("OPENWEATHER_API_KEY is not set; weather requests will fail")
	}

	// 6. Start the HTTP server in a separate goroutine
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	serverErr := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	// 7. Wait for shutdown signal
	select {
	case err := <-serverErr:
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}
	logger.Info("Shutdown signal received. Draining connections.")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	logger.Info("Server stopped")
	return nil
}

func runMigrations(sourceURL, dbURL string) error {
	m, err := migrate.New(sourceURL, dbURL)
	if err != nil {
		return err
	}
	defer m.Close()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

func setLogLevel(level string, v *slog.LevelVar) {
	switch level {
	case "debug":
		v.Set(slog.LevelDebug)
	case "warn":
		v.Set(slog.LevelWarn)
	case "error":
		v.Set(slog.LevelError)
	default:
		v.Set(slog.LevelInfo)
	}
}
