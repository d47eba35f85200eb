// internal/hn/client.go
package hn

import (
	"context"
	"encoding/json"
	"fmt"
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
	// DefaultBaseURL is the public Hacker News Firebase API.
	DefaultBaseURL = "https://hacker-news.firebaseio.com/v0"

	DefaultLimit = 20
	MaxLimit     = 100

	fallbackDomain = "news.ycombinator.com"
	responseTTL    = 5 * time.Minute
	concurrency    = 10
)

// List names a Hacker News story ranking.
type List string

const (
	ListTop  List = "top"
	ListNew  List = "new"
	ListBest List = "best"
)

// ParseList maps a query value to a List; unknown values fall back to top stories.
func ParseList(s string) List {
	switch List(s) {
	case ListNew, ListBest:
		return List(s)
	}
	return ListTop
}

func (l List) path() string {
	switch l {
	case ListNew:
		return "/newstories.json"
	case ListBest:
		return "/beststories.json"
	}
	return "/topstories.json"
}

type item struct {
	ID          int64  `json:"id"`
	Type        string `json:"type"`
	By          string `json:"by"`
	Time        int64  `json:"time"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	Score       *int   `json:"score"`
	Descendants *int   `json:"descendants"`
}

// Client reads story lists from the Hacker News API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	cache      *cache.Cache
	logger     *slog.Logger
}

// NewClient creates a new Client. An empty baseURL uses DefaultBaseURL.
func NewClient(baseURL string, httpClient *http.Client, cc *cache.Cache, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		cache:      cc,
		logger:     logger,
	}
}

// Stories returns up to limit stories of the given list, in ranking order.
// Items that fail to load or are not stories are skipped.
func (c *Client) Stories(ctx context.Context, list List, limit int) ([]model.Story, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	limit = min(limit, MaxLimit)

	var ids []int64
	if err := c.get(ctx, list.path(), &ids); err != nil {
		return nil, err
	}
	if len(ids) > limit {
		ids = ids[:limit]
	}

	items := make([]*item, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, id := range ids {
		g.Go(func() error {
			var it item
			if err := c.get(gctx, fmt.Sprintf("/item/%d.json", id), &it); err != nil {
				c.logger.Warn("Failed to fetch story", "id", id, "error", err)
				return nil
			}
			items[i] = &it
			return nil
		})
	}
	_ = g.Wait()

	stories := make([]model.Story, 0, len(items))
	for _, it := range items {
		if it == nil || it.Type != "story" {
			continue
		}
		stories = append(stories, toStory(it))
	}
	c.logger.Debug("Stories fetched", "list", list, "requested", len(ids), "returned", len(stories))
	return stories, nil
}

func (c *Client) get(ctx context.Context, path string, dst any) error {
	key := cache.Key("", "hn"+path)
	if v, ok := c.cache.Get(key); ok {
		return json.Unmarshal(v.([]byte), dst)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &custom_errors.UpstreamError{Service: "hackernews", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &custom_errors.UpstreamError{Service: "hackernews", StatusCode: resp.StatusCode}
	}

	var raw json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	c.cache.Set(key, []byte(raw), responseTTL)
	return nil
}

func toStory(it *item) model.Story {
	return model.Story{
		ID:            it.ID,
		Type:          it.Type,
		By:            it.By,
		Time:          it.Time,
		Title:         it.Title,
		URL:           ItemURL(it.ID, it.URL),
		Score:         it.Score,
		Descendants:   it.Descendants,
		Domain:        Domain(it.URL),
		DiscussionURL: DiscussionURL(it.ID),
	}
}

// Domain returns the host of a story link, or the Hacker News host for text posts.
func Domain(raw string) string {
	if raw == "" {
		return fallbackDomain
	}
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return fallbackDomain
	}
	return u.Hostname()
}

// ItemURL returns the story link, falling back to its discussion page.
func ItemURL(id int64, raw string) string {
	if raw != "" {
		return raw
	}
	return DiscussionURL(id)
}

// DiscussionURL returns the Hacker News discussion page of an item.
func DiscussionURL(id int64) string {
	return fmt.Sprintf("https://news.ycombinator.com/item?id=%d", id)
}
