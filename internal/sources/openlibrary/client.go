// Package openlibrary implements the Open Library search and books API
// client and its mapping to canonical records.
package openlibrary

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
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
	defaultBaseURL  = "https://openlibrary.org"
	coversBaseURL   = "https://covers.openlibrary.org"
	defaultRatePerS = 1 // Open Library asks for no more than 1 req/sec
)

// Client talks to the Open Library APIs.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	rateLimiter *ratelimit.Limiter
	clientOnce  sync.Once
	limiterOnce sync.Once
}

var _ sources.Client = (*Client)(nil)

// NewClient creates an Open Library client with the default endpoint.
func NewClient() *Client {
	return &Client{baseURL: defaultBaseURL}
}

// NewClientWithBaseURL creates a client against a custom endpoint, for tests.
func NewClientWithBaseURL(baseURL string) *Client {
	return &Client{baseURL: baseURL}
}

// Name identifies this source.
func (c *Client) Name() canonical.Source {
	return canonical.SourceOpenLibrary
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
			c.rateLimiter = ratelimit.New("OpenLibrary", defaultRatePerS)
		}
	})
	return c.rateLimiter
}

// searchResponse is the payload of /search.json.
type searchResponse struct {
	NumFound int         `json:"numFound"`
	Docs     []searchDoc `json:"docs"`
}

type searchDoc struct {
	Key              string   `json:"key"`
	Title            string   `json:"title"`
	Subtitle         string   `json:"subtitle"`
	AuthorName       []string `json:"author_name"`
	FirstPublishYear int      `json:"first_publish_year"`
	ISBN             []string `json:"isbn"`
	CoverID          int      `json:"cover_i"`
	Language         []string `json:"language"`
	Publisher        []string `json:"publisher"`
	Subject          []string `json:"subject"`
	RatingsAverage   float64  `json:"ratings_average"`
	RatingsCount     int      `json:"ratings_count"`
}

// Search queries /search.json and normalizes every doc.
func (c *Client) Search(ctx context.Context, query string, opts sources.Options) ([]canonical.Record, error) {
	if sources.EmptyQuery(query) {
		return []canonical.Record{}, nil
	}

	params := sources.NewParams().
		Set("q", query).
		SetInt("limit", opts.Cap()).
		Set("lang", opts.Language)
	endpoint := fmt.Sprintf("%s/search.json?%s", c.baseURL, params.Encode())
	cacheKey := fmt.Sprintf("search:%s:%d:%s", query, opts.Cap(), opts.Language)

	resp, _, err := cache.GetOrFetch("openlibrary_cache", cacheKey, func() (*searchResponse, error) {
		var result searchResponse
		if err := c.getJSON(ctx, endpoint, &result); err != nil {
			return nil, err
		}
		return &result, nil
	})
	if err != nil {
		return nil, err
	}

	records := make([]canonical.Record, 0, len(resp.Docs))
	for _, doc := range resp.Docs {
		records = append(records, normalizeDoc(doc))
	}
	return records, nil
}

// editionPayload is the /isbn/{isbn}.json edition shape. Description is
// either a plain string or a {"type", "value"} object depending on the
// edition, so it stays untyped until normalization.
type editionPayload struct {
	Key           string   `json:"key"`
	Title         string   `json:"title"`
	Subtitle      string   `json:"subtitle"`
	Publishers    []string `json:"publishers"`
	PublishDate   string   `json:"publish_date"`
	NumberOfPages int      `json:"number_of_pages"`
	Covers        []int    `json:"covers"`
	ISBN10        []string `json:"isbn_10"`
	ISBN13        []string `json:"isbn_13"`
	Description   any      `json:"description"`
}

// workPayload is the /works/{key}.json shape. Like editions, the
// description is either a plain string or a typed object.
type workPayload struct {
	Key              string   `json:"key"`
	Title            string   `json:"title"`
	Subjects         []string `json:"subjects"`
	Covers           []int    `json:"covers"`
	FirstPublishDate string   `json:"first_publish_date"`
	Description      any      `json:"description"`
}

// olKeyRe matches bare Open Library keys: works end in W, editions in M.
var olKeyRe = regexp.MustCompile(`^OL\d+[WM]$`)

// GetByID fetches one item by any of the identities the source hands out:
// a works key (what Search puts in ExternalID), an edition key, or an ISBN.
func (c *Client) GetByID(ctx context.Context, id string) (*canonical.Record, error) {
	id = strings.TrimSpace(id)
	id = strings.TrimPrefix(id, "/works/")
	id = strings.TrimPrefix(id, "/books/")

	if olKeyRe.MatchString(id) {
		if strings.HasSuffix(id, "W") {
			return c.getWork(ctx, id)
		}
		return c.getEdition(ctx, id)
	}

	i10, i13 := canonical.ClassifyISBN(id)
	normalized := i13
	if normalized == "" {
		normalized = i10
	}
	if normalized == "" {
		return nil, fmt.Errorf("unrecognized open library id %q: expected a works/edition key or an isbn", id)
	}

	endpoint := fmt.Sprintf("%s/isbn/%s.json", c.baseURL, normalized)
	edition, _, err := cache.GetOrFetch("openlibrary_cache", "isbn:"+normalized, func() (*editionPayload, error) {
		var result editionPayload
		if err := c.getJSON(ctx, endpoint, &result); err != nil {
			return nil, err
		}
		return &result, nil
	})
	if err != nil {
		return nil, err
	}

	rec := normalizeEdition(*edition, normalized)
	return &rec, nil
}

func (c *Client) getWork(ctx context.Context, key string) (*canonical.Record, error) {
	endpoint := fmt.Sprintf("%s/works/%s.json", c.baseURL, key)
	work, _, err := cache.GetOrFetch("openlibrary_cache", "work:"+key, func() (*workPayload, error) {
		var result workPayload
		if err := c.getJSON(ctx, endpoint, &result); err != nil {
			return nil, err
		}
		return &result, nil
	})
	if err != nil {
		return nil, err
	}

	rec := normalizeWork(*work)
	return &rec, nil
}

func (c *Client) getEdition(ctx context.Context, key string) (*canonical.Record, error) {
	endpoint := fmt.Sprintf("%s/books/%s.json", c.baseURL, key)
	edition, _, err := cache.GetOrFetch("openlibrary_cache", "book:"+key, func() (*editionPayload, error) {
		var result editionPayload
		if err := c.getJSON(ctx, endpoint, &result); err != nil {
			return nil, err
		}
		return &result, nil
	})
	if err != nil {
		return nil, err
	}

	rec := normalizeEdition(*edition, "")
	return &rec, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, target any) error {
	if err := c.getRateLimiter().Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.getHTTPClient().Do(req)
	if err != nil {
		return fmt.Errorf("open library request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errBody any
		_ = json.NewDecoder(resp.Body).Decode(&errBody)
		return apierr.NewStatusError("open library", resp.StatusCode, errBody)
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return apierr.NewParseError("open library", err)
	}
	return nil
}
