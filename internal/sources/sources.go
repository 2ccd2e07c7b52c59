// Package sources defines the contract shared by every external catalog
// client and small helpers for building their requests.
package sources

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/medialibre/mediatheque/internal/canonical"
)

// DefaultLimit is the result-count cap applied when a caller passes none.
const DefaultLimit = 20

// Options tunes a source search.
type Options struct {
	// Limit caps the number of results; 0 means the source default.
	Limit int
	// Language restricts results to a language code where the source
	// supports it; empty means no restriction.
	Language string
}

// Cap resolves the effective result limit.
func (o Options) Cap() int {
	if o.Limit > 0 {
		return o.Limit
	}
	return DefaultLimit
}

// Client is implemented by every external catalog client. A failed search
// on one source is non-fatal to a fan-out; callers log and move on.
type Client interface {
	// Name identifies the source in canonical records and priority tables.
	Name() canonical.Source

	// Search returns normalized records for the query. An empty or
	// whitespace-only query yields an empty slice without any network call.
	Search(ctx context.Context, query string, opts Options) ([]canonical.Record, error)

	// GetByID fetches one item by its source-scoped external id.
	GetByID(ctx context.Context, id string) (*canonical.Record, error)
}

// EmptyQuery reports whether a query is empty after trimming. Such queries
// short-circuit to an empty result to keep multi-source fan-out simple.
func EmptyQuery(query string) bool {
	return strings.TrimSpace(query) == ""
}

// Params collects query parameters, skipping undefined or empty values.
type Params struct {
	values url.Values
}

// NewParams creates an empty parameter set.
func NewParams() *Params {
	return &Params{values: url.Values{}}
}

// Set adds a string parameter unless the value is empty.
func (p *Params) Set(key, value string) *Params {
	if value != "" {
		p.values.Set(key, value)
	}
	return p
}

// SetInt adds an integer parameter unless the value is zero.
func (p *Params) SetInt(key string, value int) *Params {
	if value != 0 {
		p.values.Set(key, strconv.Itoa(value))
	}
	return p
}

// SetAll repeats the key once per non-empty element.
func (p *Params) SetAll(key string, values []string) *Params {
	for _, v := range values {
		if v != "" {
			p.values.Add(key, v)
		}
	}
	return p
}

// Encode renders the accumulated parameters as a query string.
func (p *Params) Encode() string {
	return p.values.Encode()
}
