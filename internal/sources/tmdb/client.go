// Package tmdb provides a client for TheMovieDB API.
package tmdb

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/medialibre/mediatheque/internal/ratelimit"
	"github.com/medialibre/mediatheque/internal/sources"
)

const (
	defaultBaseURL       = "https://api.themoviedb.org/3"
	defaultImageBaseURL  = "https://image.tmdb.org/t/p/original"
	defaultMaxAttempts   = 3
	defaultRatePerSecond = 4 // TMDB allows ~40 requests per 10 seconds

	// appendToResponse pulls every nested payload the sync engine stores.
	appendToResponse = "credits,images,keywords,external_ids,translations,watch/providers"
)

var (
	// ErrInvalidMediaType is returned when an unsupported media type is provided.
	ErrInvalidMediaType = errors.New("invalid media type")
	// ErrNotFound is returned when TMDB has no entry for the requested id.
	ErrNotFound = errors.New("tmdb entry not found")
)

// HTTPDoer is an interface for making HTTP requests.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// Client is a TMDB API client. Authentication is either an API key passed
// as a query parameter or a bearer access token; when both are configured
// the token wins and the key is left out of the URL.
type Client struct {
	apiKey        string
	accessToken   string
	language      string
	baseURL       string
	imageBaseURL  string
	httpClient    HTTPDoer
	rateLimiter   *ratelimit.Limiter
	retryAttempts int
}

// NewClient creates a new TMDB API client.
func NewClient(apiKey string, opts ...Option) *Client {
	client := &Client{
		apiKey:        apiKey,
		baseURL:       defaultBaseURL,
		imageBaseURL:  defaultImageBaseURL,
		httpClient:    &http.Client{Timeout: 10 * time.Second},
		rateLimiter:   ratelimit.New("TMDB", defaultRatePerSecond),
		retryAttempts: defaultMaxAttempts,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// Option is a functional option for configuring the Client.
type Option func(*Client)

// WithAccessToken sets a bearer token; it takes precedence over the API key.
func WithAccessToken(token string) Option {
	return func(client *Client) {
		client.accessToken = token
	}
}

// WithLanguage sets the preferred metadata language (e.g. "fr").
func WithLanguage(lang string) Option {
	return func(client *Client) {
		client.language = lang
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c HTTPDoer) Option {
	return func(client *Client) {
		if c != nil {
			client.httpClient = c
		}
	}
}

// WithBaseURL sets a custom base URL for the TMDB API.
func WithBaseURL(base string) Option {
	return func(client *Client) {
		if base != "" {
			client.baseURL = strings.TrimSuffix(base, "/")
		}
	}
}

// WithImageBaseURL sets a custom base URL for TMDB images.
func WithImageBaseURL(base string) Option {
	return func(client *Client) {
		if base != "" {
			client.imageBaseURL = strings.TrimSuffix(base, "/")
		}
	}
}

// WithRetryAttempts sets the number of retry attempts for failed requests.
func WithRetryAttempts(attempts int) Option {
	return func(client *Client) {
		if attempts > 0 {
			client.retryAttempts = attempts
		}
	}
}

// WithRateLimiter sets a custom rate limiter for the client.
func WithRateLimiter(limiter *ratelimit.Limiter) Option {
	return func(client *Client) {
		if limiter != nil {
			client.rateLimiter = limiter
		}
	}
}

// ImageBaseURL returns the configured image host prefix.
func (c *Client) ImageBaseURL() string {
	return c.imageBaseURL
}

// ImageURL constructs the full image URL from a poster or still path.
func (c *Client) ImageURL(path string) string {
	if path == "" {
		return ""
	}
	return c.imageBaseURL + path
}

// endpoint builds a request URL, adding the api_key parameter only when no
// bearer token is configured, and the language restriction when set.
func (c *Client) endpoint(path string, params *sources.Params) string {
	if params == nil {
		params = sources.NewParams()
	}
	if c.accessToken == "" {
		params.Set("api_key", c.apiKey)
	}
	params.Set("language", c.language)
	query := params.Encode()
	if query == "" {
		return c.baseURL + path
	}
	return fmt.Sprintf("%s%s?%s", c.baseURL, path, query)
}
