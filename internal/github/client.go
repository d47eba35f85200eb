// internal/github/client.go
package github

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/google/go-github/v62/github"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"devboard/internal/cache"
	"devboard/internal/model"
)

const (
	profileTTL        = 5 * time.Minute
	reposTTL          = 10 * time.Minute
	commitActivityTTL = 5 * time.Minute
	languagesTTL      = time.Hour

	defaultRetryDelay = 2 * time.Second
	defaultRateLimit  = 10

	// SortUpdated orders repositories by most recent push.
	SortUpdated = "updated"
	// SortStars orders repositories by star count, descending.
	SortStars = "stars"
)

// Client is a wrapper around the go-github client.
// Every call takes the caller's OAuth token; an empty token falls back to the
// token the Client was created with.
type Client struct {
	httpClient    *http.Client
	baseURL       *url.URL
	fallbackToken string
	limiter       *rate.Limiter
	cache         *cache.Cache
	retryDelay    time.Duration
	logger        *slog.Logger
}

// Option configures a Client.
type Option func(*Client) error

// WithBaseURL points the client at a different API root, such as a test server.
func WithBaseURL(raw string) Option {
	return func(c *Client) error {
		if !strings.HasSuffix(raw, "/") {
			raw += "/"
		}
		u, err := url.Parse(raw)
		if err != nil {
			return fmt.Errorf("invalid GitHub API url %q: %w", raw, err)
		}
		c.baseURL = u
		return nil
	}
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) error {
		c.httpClient = hc
		return nil
	}
}

// WithRateLimit caps outbound requests per second.
func WithRateLimit(perSecond float64) Option {
	return func(c *Client) error {
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		return nil
	}
}

// WithRetryDelay sets the wait before re-polling a commit-activity endpoint
// that is still being computed.
func WithRetryDelay(d time.Duration) Option {
	return func(c *Client) error {
		c.retryDelay = d
		return nil
	}
}

// WithCache attaches an advisory response cache.
func WithCache(cc *cache.Cache) Option {
	return func(c *Client) error {
		c.cache = cc
		return nil
	}
}

// NewClient creates and configures a new Client instance.
// The provided token is used whenever a call is made without a user token.
func NewClient(token string, logger *slog.Logger, opts ...Option) (*Client, error) {
	c := &Client{
		httpClient:    &http.Client{},
		fallbackToken: token,
		limiter:       rate.NewLimiter(rate.Limit(defaultRateLimit), 1),
		retryDelay:    defaultRetryDelay,
		logger:        logger,
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// api builds a go-github client authenticated with the effective token.
func (c *Client) api(token string) (*github.Client, string) {
	if token == "" {
		token = c.fallbackToken
	}

	hc := c.httpClient
	if token != "" {
		hc = &http.Client{
			Transport: &oauth2.Transport{
				Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}),
				Base:   c.httpClient.Transport,
			},
			Timeout: c.httpClient.Timeout,
		}
	}

	gh := github.NewClient(hc)
	if c.baseURL != nil {
		gh.BaseURL = c.baseURL
	}
	return gh, token
}

func (c *Client) wait(ctx context.Context) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}
	return nil
}

// Profile fetches the user the token belongs to.
func (c *Client) Profile(ctx context.Context, token string) (*model.Profile, error) {
	gh, token := c.api(token)
	key := cache.Key(token, "/user")
	if v, ok := c.cache.Get(key); ok {
		p := v.(model.Profile)
		return &p, nil
	}

	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	user, _, err := gh.Users.Get(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("fetch profile: %w", err)
	}

	p := toInternalProfile(user)
	c.cache.Set(key, p, profileTTL)
	return &p, nil
}

// PrimaryEmail returns the user's primary verified email address, or "" when none is visible.
func (c *Client) PrimaryEmail(ctx context.Context, token string) (string, error) {
	gh, _ := c.api(token)
	if err := c.wait(ctx); err != nil {
		return "", err
	}
	emails, _, err := gh.Users.ListEmails(ctx, &github.ListOptions{PerPage: 100})
	if err != nil {
		return "", fmt.Errorf("list emails: %w", err)
	}
	for _, e := range emails {
		if e.GetPrimary() && e.GetVerified() {
			return e.GetEmail(), nil
		}
	}
	return "", nil
}

// OwnedRepos lists repositories owned by the authenticated user, forks excluded,
// capped at limit. sortBy is SortUpdated (default) or SortStars.
func (c *Client) OwnedRepos(ctx context.Context, token string, limit int, sortBy string) ([]model.Repository, error) {
	if limit <= 0 {
		return []model.Repository{}, nil
	}
	perPage := min(limit*2, 100)

	gh, token := c.api(token)
	key := cache.Key(token, fmt.Sprintf("/user/repos?type=owner&sort=updated&per_page=%d", perPage))

	var repos []model.Repository
	if v, ok := c.cache.Get(key); ok {
		repos = v.([]model.Repository)
	} else {
		if err := c.wait(ctx); err != nil {
			return nil, err
		}
		c.logger.Debug("Listing owned repositories", "per_page", perPage)
		list, _, err := gh.Repositories.ListByAuthenticatedUser(ctx, &github.RepositoryListByAuthenticatedUserOptions{
			Type:        "owner",
			Sort:        "updated",
			ListOptions: github.ListOptions{PerPage: perPage},
		})
		if err != nil {
			return nil, fmt.Errorf("list repositories: %w", err)
		}
		repos = make([]model.Repository, 0, len(list))
		for _, r := range list {
			repos = append(repos, toInternalRepository(r))
		}
		c.cache.Set(key, repos, reposTTL)
	}

	return selectOwned(repos, limit, sortBy), nil
}

// selectOwned drops forks, keeps the first limit entries and applies the requested order.
// The input slice is never modified since it may be shared through the cache.
func selectOwned(repos []model.Repository, limit int, sortBy string) []model.Repository {
	owned := make([]model.Repository, 0, limit)
	for _, r := range repos {
		if r.Fork {
			continue
		}
		owned = append(owned, r)
		if len(owned) == limit {
			break
		}
	}
	if sortBy == SortStars {
		sort.SliceStable(owned, func(i, j int) bool {
			return owned[i].StarsCount > owned[j].StarsCount
		})
	}
	return owned
}

// CommitActivity polls the weekly commit activity of a repository.
// GitHub computes these statistics lazily and answers 202 while it does; in
// that case the request is retried exactly once after the retry delay.
func (c *Client) CommitActivity(ctx context.Context, owner, name, token string) model.CommitActivity {
	logger := c.logger.With("owner", owner, "repo", name)
	gh, token := c.api(token)
	key := cache.Key(token, fmt.Sprintf("/repos/%s/%s/stats/commit_activity", owner, name))
	if v, ok := c.cache.Get(key); ok {
		return v.(model.CommitActivity)
	}

	weeks, err := c.listCommitActivity(ctx, gh, owner, name)
	if isAccepted(err) {
		logger.Info("Commit activity is being computed, retrying", "delay", c.retryDelay.String())
		select {
		case <-time.After(c.retryDelay):
		case <-ctx.Done():
			logger.Warn("Commit activity retry abandoned", "error", ctx.Err())
			return model.CommitActivity{Status: model.ActivityError}
		}
		weeks, err = c.listCommitActivity(ctx, gh, owner, name)
	}

	switch {
	case isAccepted(err):
		logger.Info("Commit activity still being computed")
		return model.CommitActivity{Status: model.ActivityAnalyzing}
	case err != nil:
		logger.Warn("Failed to fetch commit activity", "status", StatusCode(err), "error", err)
		return model.CommitActivity{Status: model.ActivityError}
	}

	result := model.CommitActivity{Status: model.ActivitySuccess, Weeks: weeks}
	c.cache.Set(key, result, commitActivityTTL)
	logger.Debug("Commit activity fetched", "weeks", len(weeks))
	return result
}

func (c *Client) listCommitActivity(ctx context.Context, gh *github.Client, owner, name string) ([]model.CommitWeek, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	activity, _, err := gh.Repositories.ListCommitActivity(ctx, owner, name)
	if err != nil {
		return nil, err
	}
	weeks := make([]model.CommitWeek, 0, len(activity))
	for _, w := range activity {
		weeks = append(weeks, model.CommitWeek{
			Week:  w.GetWeek().Unix(),
			Total: w.GetTotal(),
			Days:  w.Days,
		})
	}
	return weeks, nil
}

// Languages fetches the byte count per language of a repository.
func (c *Client) Languages(ctx context.Context, owner, name, token string) (map[string]int, error) {
	gh, token := c.api(token)
	key := cache.Key(token, fmt.Sprintf("/repos/%s/%s/languages", owner, name))
	if v, ok := c.cache.Get(key); ok {
		return v.(map[string]int), nil
	}

	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	langs, _, err := gh.Repositories.ListLanguages(ctx, owner, name)
	if err != nil {
		return nil, fmt.Errorf("list languages: %w", err)
	}
	c.cache.Set(key, langs, languagesTTL)
	return langs, nil
}

func isAccepted(err error) bool {
	var accepted *github.AcceptedError
	return errors.As(err, &accepted)
}

// StatusCode extracts the upstream HTTP status from a go-github error, or 0.
func StatusCode(err error) int {
	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		return ghErr.Response.StatusCode
	}
	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) && rateErr.Response != nil {
		return rateErr.Response.StatusCode
	}
	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) && abuseErr.Response != nil {
		return abuseErr.Response.StatusCode
	}
	return 0
}

// toInternalRepository translates a github.Repository object to our internal model.Repository.
func toInternalRepository(r *github.Repository) model.Repository {
	return model.Repository{
		GithubRepoID: r.GetID(),
		Owner:        r.GetOwner().GetLogin(),
		Name:         r.GetName(),
		FullName:     r.GetFullName(),
		Description:  r.Description,
		URL:          r.GetHTMLURL(),
		Language:     r.Language,
		ForksCount:   r.GetForksCount(),
		StarsCount:   r.GetStargazersCount(),
		Fork:         r.GetFork(),
		PushedAt:     r.GetPushedAt().Time,
	}
}

// toInternalProfile translates a github.User object to our internal model.Profile.
func toInternalProfile(u *github.User) model.Profile {
	return model.Profile{
		ID:          u.GetID(),
		Login:       u.GetLogin(),
		Name:        u.Name,
		AvatarURL:   u.GetAvatarURL(),
		HTMLURL:     u.GetHTMLURL(),
		Bio:         u.Bio,
		PublicRepos: u.GetPublicRepos(),
		Followers:   u.GetFollowers(),
		Following:   u.GetFollowing(),
		Email:       u.Email,
	}
}
