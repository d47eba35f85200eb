// internal/stats/aggregator.go
package stats

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"golang.org/x/sync/errgroup"

	custom_errors "devboard/internal/errors"
	"devboard/internal/github"
	"devboard/internal/model"
)

// GitHubAPI is the subset of the GitHub client the aggregation pipeline needs.
type GitHubAPI interface {
	Profile(ctx context.Context, token string) (*model.Profile, error)
	OwnedRepos(ctx context.Context, token string, limit int, sortBy string) ([]model.Repository, error)
	CommitActivity(ctx context.Context, owner, name, token string) model.CommitActivity
	Languages(ctx context.Context, owner, name, token string) (map[string]int, error)
}

// Options tunes the aggregation window and filters.
type Options struct {
	Weeks           int
	MinSharePercent float64
	Concurrency     int
	RepoLimit       int
}

// Aggregator orchestrates per-repository statistics.
type Aggregator struct {
	gh     GitHubAPI
	logger *slog.Logger
	opts   Options
}

// NewAggregator creates a new Aggregator instance.
func NewAggregator(gh GitHubAPI, logger *slog.Logger, opts Options) *Aggregator {
	if opts.Weeks <= 0 {
		opts.Weeks = DefaultWeeks
	}
	if opts.MinSharePercent < 0 {
		opts.MinSharePercent = DefaultMinSharePercent
	}
	if opts.RepoLimit <= 0 {
		opts.RepoLimit = 8
	}
	return &Aggregator{gh: gh, logger: logger, opts: opts}
}

// Aggregate fetches commit activity and languages for every repository concurrently.
// The result has one entry per input repository, in input order. A failure for one
// repository degrades only that repository's entry.
func (a *Aggregator) Aggregate(ctx context.Context, repos []model.Repository, token string) []model.RepoStats {
	results := make([]model.RepoStats, len(repos))

	var g errgroup.Group
	if a.opts.Concurrency > 0 {
		g.SetLimit(a.opts.Concurrency)
	}

	for i, repo := range repos {
		g.Go(func() error {
			results[i] = a.aggregateRepo(ctx, repo, token)
			return nil
		})
	}
	_ = g.Wait() // branches never fail

	return results
}

// aggregateRepo runs the commit-activity poller and the language fetch side by side.
func (a *Aggregator) aggregateRepo(ctx context.Context, repo model.Repository, token string) model.RepoStats {
	logger := a.logger.With("owner", repo.Owner, "repo", repo.Name)

	var (
		activity model.CommitActivity
		langs    map[string]int
		g        errgroup.Group
	)
	g.Go(func() error {
		activity = a.gh.CommitActivity(ctx, repo.Owner, repo.Name, token)
		return nil
	})
	g.Go(func() error {
		var err error
		langs, err = a.gh.Languages(ctx, repo.Owner, repo.Name, token)
		if err != nil {
			logLanguageFailure(logger, err)
			langs = nil
		}
		return nil
	})
	_ = g.Wait()

	stats := model.RepoStats{
		Repo:         repo,
		Weeks:        RecentWeeks(activity, a.opts.Weeks),
		Languages:    LanguageShares(langs, a.opts.MinSharePercent),
		CommitStatus: activity.Status,
	}
	if stats.CommitStatus == "" {
		stats.CommitStatus = model.ActivityError
	}

	logger.Info("Repository stats aggregated", "languages", len(stats.Languages), "commit_status", stats.CommitStatus)
	return stats
}

func logLanguageFailure(logger *slog.Logger, err error) {
	switch github.StatusCode(err) {
	case http.StatusForbidden:
		logger.Warn("Access to languages denied (private repository or missing scope)", "error", err)
	case http.StatusNotFound:
		logger.Warn("Repository not found or inaccessible", "error", err)
	default:
		logger.Warn("Failed to fetch languages", "error", err)
	}
}

// Dashboard loads the authenticated profile, selects the owned repositories and
// aggregates their statistics. limit <= 0 uses the configured default.
func (a *Aggregator) Dashboard(ctx context.Context, token, sortBy string, limit int) (*model.Dashboard, error) {
	if limit <= 0 {
		limit = a.opts.RepoLimit
	}

	profile, err := a.gh.Profile(ctx, token)
	if err != nil {
		return nil, upstream(err)
	}

	repos, err := a.gh.OwnedRepos(ctx, token, limit, sortBy)
	if err != nil {
		return nil, upstream(err)
	}

	a.logger.Info("Aggregating repository stats", "user", profile.Login, "repos", len(repos), "sort", sortBy)
	return &model.Dashboard{
		User:  *profile,
		Repos: a.Aggregate(ctx, repos, token),
	}, nil
}

// Repositories returns the owned repositories without statistics.
func (a *Aggregator) Repositories(ctx context.Context, token, sortBy string, limit int) ([]model.Repository, error) {
	if limit <= 0 {
		limit = a.opts.RepoLimit
	}
	repos, err := a.gh.OwnedRepos(ctx, token, limit, sortBy)
	if err != nil {
		return nil, upstream(err)
	}
	return repos, nil
}

// Profile returns the authenticated GitHub profile.
func (a *Aggregator) Profile(ctx context.Context, token string) (*model.Profile, error) {
	profile, err := a.gh.Profile(ctx, token)
	if err != nil {
		return nil, upstream(err)
	}
	return profile, nil
}

func upstream(err error) error {
	return &custom_errors.UpstreamError{
		Service:    "github",
		StatusCode: github.StatusCode(err),
		Err:        fmt.Errorf("github: %w", err),
	}
}
