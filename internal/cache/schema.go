package cache

// One cache table per external source; all share the same layout keyed by
// cache_key. ttl_seconds overrides the configured TTL for negative entries.

const googleBooksSchema = `
CREATE TABLE IF NOT EXISTS googlebooks_cache (
	cache_key TEXT PRIMARY KEY NOT NULL,
	data TEXT NOT NULL,
	cached_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	ttl_seconds INTEGER
);

CREATE INDEX IF NOT EXISTS idx_googlebooks_cached_at ON googlebooks_cache(cached_at);
`

const openLibrarySchema = `
CREATE TABLE IF NOT EXISTS openlibrary_cache (
	cache_key TEXT PRIMARY KEY NOT NULL,
	data TEXT NOT NULL,
	cached_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	ttl_seconds INTEGER
);

CREATE INDEX IF NOT EXISTS idx_openlibrary_cached_at ON openlibrary_cache(cached_at);
`

const bnfSchema = `
CREATE TABLE IF NOT EXISTS bnf_cache (
	cache_key TEXT PRIMARY KEY NOT NULL,
	data TEXT NOT NULL,
	cached_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	ttl_seconds INTEGER
);

CREATE INDEX IF NOT EXISTS idx_bnf_cached_at ON bnf_cache(cached_at);
`

const tmdbSchema = `
CREATE TABLE IF NOT EXISTS tmdb_cache (
	cache_key TEXT PRIMARY KEY NOT NULL,
	data TEXT NOT NULL,
	cached_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	ttl_seconds INTEGER
);

CREATE INDEX IF NOT EXISTS idx_tmdb_cached_at ON tmdb_cache(cached_at);
`

const tvmazeSchema = `
CREATE TABLE IF NOT EXISTS tvmaze_cache (
	cache_key TEXT PRIMARY KEY NOT NULL,
	data TEXT NOT NULL,
	cached_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	ttl_seconds INTEGER
);

CREATE INDEX IF NOT EXISTS idx_tvmaze_cached_at ON tvmaze_cache(cached_at);
`

var allSchemas = []string{
	googleBooksSchema,
	openLibrarySchema,
	bnfSchema,
	tmdbSchema,
	tvmazeSchema,
}

// validTableNames whitelists table names interpolated into SQL.
var validTableNames = map[string]bool{
	"googlebooks_cache": true,
	"openlibrary_cache": true,
	"bnf_cache":         true,
	"tmdb_cache":        true,
	"tvmaze_cache":      true,
}
