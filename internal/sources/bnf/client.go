// Package bnf implements a client for the BNF catalogue's SRU endpoint.
package bnf

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/medialibre/mediatheque/internal/apierr"
	"github.com/medialibre/mediatheque/internal/cache"
	"github.com/medialibre/mediatheque/internal/canonical"
	"github.com/medialibre/mediatheque/internal/ratelimit"
	"github.com/medialibre/mediatheque/internal/sources"
)

const (
	defaultBaseURL = "https://catalogue.bnf.fr/api/SRU"
	catalogueURL   = "https://catalogue.bnf.fr"
)

// Client talks to the BNF SRU API.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	rateLimiter *ratelimit.Limiter
	clientOnce  sync.Once
	limiterOnce sync.Once
}

var _ sources.Client = (*Client)(nil)

// NewClient creates a BNF client with the default endpoint.
func NewClient() *Client {
	return &Client{baseURL: defaultBaseURL}
}

// NewClientWithBaseURL creates a client against a custom endpoint, for tests.
func NewClientWithBaseURL(baseURL string) *Client {
	return &Client{baseURL: baseURL}
}

// Name identifies this source.
func (c *Client) Name() canonical.Source {
	return canonical.SourceBNF
}

func (c *Client) getHTTPClient() *http.Client {
	c.clientOnce.Do(func() {
		if c.httpClient == nil {
			c.httpClient = &http.Client{Timeout: 15 * time.Second}
		}
	})
	return c.httpClient
}

func (c *Client) getRateLimiter() *ratelimit.Limiter {
	c.limiterOnce.Do(func() {
		if c.rateLimiter == nil {
			c.rateLimiter = ratelimit.New("BNF", 2)
		}
	})
	return c.rateLimiter
}

// Search runs an anywhere search against the SRU endpoint.
func (c *Client) Search(ctx context.Context, query string, opts sources.Options) ([]canonical.Record, error) {
	if sources.EmptyQuery(query) {
		return []canonical.Record{}, nil
	}

	cql := fmt.Sprintf(`bib.anywhere all "%s"`, strings.ReplaceAll(query, `"`, " "))
	return c.searchCQL(ctx, cql, opts.Cap())
}

// GetByID fetches a single record by its ARK or FRBNF identifier.
func (c *Client) GetByID(ctx context.Context, id string) (*canonical.Record, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("bnf identifier is required")
	}

	cql := fmt.Sprintf(`bib.persistentid any "%s"`, id)
	records, err := c.searchCQL(ctx, cql, 1)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("no BNF record found for %s", id)
	}
	return &records[0], nil
}

func (c *Client) searchCQL(ctx context.Context, cql string, limit int) ([]canonical.Record, error) {
	params := sources.NewParams().
		Set("version", "1.2").
		Set("operation", "searchRetrieve").
		Set("recordSchema", "dublincore").
		Set("query", cql).
		SetInt("maximumRecords", limit)

	endpoint := fmt.Sprintf("%s?%s", c.baseURL, params.Encode())
	cacheKey := fmt.Sprintf("sru:%s:%d", cql, limit)

	body, _, err := cache.GetOrFetch("bnf_cache", cacheKey, func() (string, error) {
		return c.fetchXML(ctx, endpoint)
	})
	if err != nil {
		return nil, err
	}

	fragments := splitRecords(body)
	records := make([]canonical.Record, 0, len(fragments))
	for _, fragment := range fragments {
		records = append(records, normalizeRecord(extractFields(fragment)))
	}
	return records, nil
}

func (c *Client) fetchXML(ctx context.Context, endpoint string) (string, error) {
	if err := c.getRateLimiter().Wait(ctx); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.getHTTPClient().Do(req)
	if err != nil {
		return "", fmt.Errorf("bnf request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", apierr.NewParseError("bnf", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", apierr.NewStatusError("bnf", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	return string(raw), nil
}

// normalizeRecord maps one extracted SRU record onto the canonical shape.
// First title value is the title, a second one becomes the subtitle.
func normalizeRecord(raw rawRecord) canonical.Record {
	rec := canonical.Record{SourceName: canonical.SourceBNF}

	if titles := raw["title"]; len(titles) > 0 {
		rec.Title = titles[0]
		if len(titles) > 1 {
			rec.Subtitle = titles[1]
		}
	}
	rec.Authors = canonical.DedupeStrings(raw["creator"])
	rec.Genres = canonical.DedupeStrings(raw["subject"])

	if dates := raw["date"]; len(dates) > 0 {
		rec.ReleaseDate = canonical.NormalizeDate(dates[0])
	}
	if publishers := raw["publisher"]; len(publishers) > 0 {
		rec.Publisher = publishers[0]
	}
	if languages := raw["language"]; len(languages) > 0 {
		rec.LanguageCode = languages[0]
	}
	if descriptions := raw["description"]; len(descriptions) > 0 {
		rec.Synopsis = descriptions[0]
	}

	identifiers := raw["identifier"]
	rec.ExternalID = ResolveIdentifier(identifiers)
	rec.ISBN10, rec.ISBN13 = ExtractISBNs(identifiers)

	if strings.HasPrefix(rec.ExternalID, "ark:") {
		rec.DetailURL = catalogueURL + "/" + rec.ExternalID
	}
	return rec
}
