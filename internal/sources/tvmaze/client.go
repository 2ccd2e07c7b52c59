// Package tvmaze implements the TV Maze API client. The API needs no key
// and returns 204 with an empty body when a lookup has nothing to say.
package tvmaze

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/medialibre/mediatheque/internal/apierr"
	"github.com/medialibre/mediatheque/internal/cache"
	"github.com/medialibre/mediatheque/internal/canonical"
	"github.com/medialibre/mediatheque/internal/ratelimit"
	"github.com/medialibre/mediatheque/internal/sources"
)

const defaultBaseURL = "https://api.tvmaze.com"

// Client talks to the TV Maze API.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	rateLimiter *ratelimit.Limiter
	clientOnce  sync.Once
	limiterOnce sync.Once
}

var _ sources.Client = (*Client)(nil)

// NewClient creates a TV Maze client with the default endpoint.
func NewClient() *Client {
	return &Client{baseURL: defaultBaseURL}
}

// NewClientWithBaseURL creates a client against a custom endpoint, for tests.
func NewClientWithBaseURL(baseURL string) *Client {
	return &Client{baseURL: baseURL}
}

// Name identifies this source.
func (c *Client) Name() canonical.Source {
	return canonical.SourceTVMaze
}

func (c *Client) getHTTPClient() *http.Client {
	c.clientOnce.Do(func() {
		if c.httpClient == nil {
			c.httpClient = &http.Client{Timeout: 10 * time.Second}
		}
	})
	return c.httpClient
}

func (c *Client) getRateLimiter() *ratelimit.Limiter {
	c.limiterOnce.Do(func() {
		if c.rateLimiter == nil {
			// TV Maze allows ~20 calls every 10 seconds
			c.rateLimiter = ratelimit.New("TVMaze", 2)
		}
	})
	return c.rateLimiter
}

// Search queries /search/shows and normalizes every scored hit.
func (c *Client) Search(ctx context.Context, query string, opts sources.Options) ([]canonical.Record, error) {
	if sources.EmptyQuery(query) {
		return []canonical.Record{}, nil
	}

	params := sources.NewParams().Set("q", query)
	endpoint := fmt.Sprintf("%s/search/shows?%s", c.baseURL, params.Encode())
	cacheKey := "search:" + query

	results, fromCache, err := cache.GetOrFetch("tvmaze_cache", cacheKey, func() (*[]searchResult, error) {
		var hits []searchResult
		if err := c.fetchJSON(ctx, endpoint, &hits); err != nil {
			return nil, err
		}
		return &hits, nil
	})
	if err != nil {
		return nil, err
	}
	slog.Debug("TV Maze search done", "query", query, "hits", len(*results), "cached", fromCache)

	limit := opts.Cap()
	records := make([]canonical.Record, 0, limit)
	for _, hit := range *results {
		if len(records) >= limit {
			break
		}
		records = append(records, NormalizeShow(hit.Show))
	}
	return records, nil
}

// SingleSearch queries /singlesearch/shows, which returns the single best
// match or 404 when nothing fits.
func (c *Client) SingleSearch(ctx context.Context, query string) (*canonical.Record, error) {
	if sources.EmptyQuery(query) {
		return nil, nil
	}

	params := sources.NewParams().Set("q", query)
	endpoint := fmt.Sprintf("%s/singlesearch/shows?%s", c.baseURL, params.Encode())

	show, _, err := cache.GetOrFetchWithTTL("tvmaze_cache", "singlesearch:"+query, func() (*Show, error) {
		var s Show
		if err := c.fetchJSON(ctx, endpoint, &s); err != nil {
			return nil, err
		}
		return &s, nil
	}, notFoundTTL)
	if err != nil {
		return nil, err
	}
	if show == nil || show.ID == 0 {
		return nil, nil
	}
	rec := NormalizeShow(*show)
	return &rec, nil
}

// GetByID fetches a show with its seasons and episodes embedded.
func (c *Client) GetByID(ctx context.Context, id string) (*canonical.Record, error) {
	show, err := c.GetShow(ctx, id)
	if err != nil {
		return nil, err
	}
	if show == nil || show.ID == 0 {
		return nil, nil
	}
	rec := NormalizeShow(*show)
	return &rec, nil
}

// GetShow fetches the full show payload, seasons and episodes included.
func (c *Client) GetShow(ctx context.Context, id string) (*Show, error) {
	if id == "" {
		return nil, fmt.Errorf("show id is required")
	}

	params := sources.NewParams().SetAll("embed[]", []string{"seasons", "episodes"})
	endpoint := fmt.Sprintf("%s/shows/%s?%s", c.baseURL, id, params.Encode())

	show, _, err := cache.GetOrFetchWithTTL("tvmaze_cache", "show:"+id, func() (*Show, error) {
		var s Show
		if err := c.fetchJSON(ctx, endpoint, &s); err != nil {
			return nil, err
		}
		return &s, nil
	}, notFoundTTL)
	return show, err
}

// notFoundTTL keeps empty lookups (204, zero-id payloads) on the shorter
// negative TTL so a show published later is picked up within a week.
var notFoundTTL = cache.SelectNegativeTTL(func(s *Show) bool {
	return s == nil || s.ID == 0
})

func (c *Client) fetchJSON(ctx context.Context, endpoint string, target any) error {
	body, err := c.doGet(ctx, endpoint)
	if err != nil {
		return err
	}
	if body == nil {
		return nil
	}
	defer func() { _ = body.Close() }()

	if err := json.NewDecoder(body).Decode(target); err != nil {
		return apierr.NewParseError("tvmaze", err)
	}
	return nil
}

// doGet returns a nil body for a 204 response.
func (c *Client) doGet(ctx context.Context, endpoint string) (io.ReadCloser, error) {
	if err := c.getRateLimiter().Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.getHTTPClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("tvmaze request failed: %w", err)
	}

	if resp.StatusCode == http.StatusNoContent {
		_ = resp.Body.Close()
		return nil, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errBody any
		_ = json.NewDecoder(resp.Body).Decode(&errBody)
		_ = resp.Body.Close()
		return nil, apierr.NewStatusError("tvmaze", resp.StatusCode, errBody)
	}
	return resp.Body, nil
}
