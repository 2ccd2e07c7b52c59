// Package googlebooks implements the Google Books volumes API client and
// its mapping to canonical records.
package googlebooks

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
	"github.com/medialibre/mediatheque/internal/config"
	"github.com/medialibre/mediatheque/internal/ratelimit"
	"github.com/medialibre/mediatheque/internal/sources"
)

const defaultBaseURL = "https://www.googleapis.com/books/v1"

// Client talks to the Google Books volumes API.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	rateLimiter *ratelimit.Limiter
	clientOnce  sync.Once
	limiterOnce sync.Once
}

var _ sources.Client = (*Client)(nil)

// NewClient creates a Google Books client with the default endpoint.
func NewClient() *Client {
	return &Client{baseURL: defaultBaseURL}
}

// NewClientWithBaseURL creates a client against a custom endpoint, for tests.
func NewClientWithBaseURL(baseURL string) *Client {
	return &Client{baseURL: baseURL}
}

// Name identifies this source.
func (c *Client) Name() canonical.Source {
	return canonical.SourceGoogleBooks
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
			c.rateLimiter = ratelimit.New("GoogleBooks", 5)
		}
	})
	return c.rateLimiter
}

// Search queries the volumes endpoint and normalizes every hit.
func (c *Client) Search(ctx context.Context, query string, opts sources.Options) ([]canonical.Record, error) {
	if sources.EmptyQuery(query) {
		return []canonical.Record{}, nil
	}

	params := sources.NewParams().
		Set("q", query).
		SetInt("maxResults", opts.Cap()).
		Set("langRestrict", opts.Language).
		Set("key", config.GoogleBooksAPIKey)

	endpoint := fmt.Sprintf("%s/volumes?%s", c.baseURL, params.Encode())
	cacheKey := fmt.Sprintf("search:%s:%d:%s", query, opts.Cap(), opts.Language)

	resp, fromCache, err := cache.GetOrFetch("googlebooks_cache", cacheKey, func() (*Response, error) {
		return c.fetchVolumes(ctx, endpoint)
	})
	if err != nil {
		return nil, err
	}
	slog.Debug("Google Books search done", "query", query, "hits", resp.TotalItems, "cached", fromCache)

	records := make([]canonical.Record, 0, len(resp.Items))
	for _, item := range resp.Items {
		records = append(records, Normalize(item))
	}
	return records, nil
}

// SearchByISBN is a convenience wrapper for the isbn: query syntax.
func (c *Client) SearchByISBN(ctx context.Context, isbn string) ([]canonical.Record, error) {
	normalized := canonical.NormalizeISBN(isbn)
	if normalized == "" {
		return []canonical.Record{}, nil
	}
	return c.Search(ctx, "isbn:"+normalized, sources.Options{Limit: 5})
}

// GetByID fetches a single volume by its Google Books volume id.
func (c *Client) GetByID(ctx context.Context, id string) (*canonical.Record, error) {
	if id == "" {
		return nil, fmt.Errorf("volume id is required")
	}

	params := sources.NewParams().Set("key", config.GoogleBooksAPIKey)
	endpoint := fmt.Sprintf("%s/volumes/%s", c.baseURL, id)
	if q := params.Encode(); q != "" {
		endpoint += "?" + q
	}

	volume, _, err := cache.GetOrFetch("googlebooks_cache", "volume:"+id, func() (*Volume, error) {
		return c.fetchVolume(ctx, endpoint)
	})
	if err != nil {
		return nil, err
	}

	rec := Normalize(*volume)
	return &rec, nil
}

func (c *Client) fetchVolumes(ctx context.Context, endpoint string) (*Response, error) {
	body, err := c.doGet(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	defer func() { _ = body.Close() }()

	var result Response
	if err := json.NewDecoder(body).Decode(&result); err != nil {
		return nil, apierr.NewParseError("google books", err)
	}
	return &result, nil
}

func (c *Client) fetchVolume(ctx context.Context, endpoint string) (*Volume, error) {
	body, err := c.doGet(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	defer func() { _ = body.Close() }()

	var volume Volume
	if err := json.NewDecoder(body).Decode(&volume); err != nil {
		return nil, apierr.NewParseError("google books", err)
	}
	return &volume, nil
}

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
		return nil, fmt.Errorf("google books request failed: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errBody any
		_ = json.NewDecoder(resp.Body).Decode(&errBody)
		_ = resp.Body.Close()
		return nil, apierr.NewStatusError("google books", resp.StatusCode, errBody)
	}
	return resp.Body, nil
}
