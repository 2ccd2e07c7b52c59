// Package cache provides a SQLite-backed response cache for the source
// clients, with per-source tables and TTL-based expiry.
package cache

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/spf13/viper"
	_ "modernc.org/sqlite"
)

const (
	// DefaultTTL is the time-to-live for cached responses (30 days).
	DefaultTTL = 720 * time.Hour
	// NegativeTTL is the shorter TTL for cached "not found" responses (7 days).
	NegativeTTL = 168 * time.Hour
)

// FetchFunc fetches data from an external source on cache miss.
type FetchFunc[T any] func() (T, error)

// DB manages the SQLite connection used for caching.
type DB struct {
	db   *sql.DB
	mu   sync.RWMutex
	path string
}

var (
	globalCache     *DB
	globalCacheOnce sync.Once
)

// GetGlobalCache returns the process-wide cache instance, creating it and
// its tables on first use.
func GetGlobalCache() (*DB, error) {
	var initErr error
	globalCacheOnce.Do(func() {
		dbPath := viper.GetString("cache.dbfile")
		if dbPath == "" {
			dbPath = "./cache.db"
		}
		globalCache, initErr = Open(dbPath)
		if initErr != nil {
			return
		}
		for _, schema := range allSchemas {
			if err := globalCache.createTable(schema); err != nil {
				initErr = fmt.Errorf("failed to create cache table: %w", err)
				return
			}
		}
	})
	if initErr != nil {
		return nil, initErr
	}
	return globalCache, nil
}

// ResetGlobalCache closes and forgets the singleton so the next call to
// GetGlobalCache builds a fresh one. For tests.
func ResetGlobalCache() error {
	if globalCache != nil {
		if err := globalCache.Close(); err != nil {
			return err
		}
	}
	globalCache = nil
	globalCacheOnce = sync.Once{}
	return nil
}

// Open opens (or creates) a cache database at the given path.
func Open(dbPath string) (*DB, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)

	if err := db.Ping(); err != nil {
		closeErr := db.Close()
		return nil, errors.Join(fmt.Errorf("failed to connect to cache database: %w", err), closeErr)
	}
	return &DB{db: db, path: dbPath}, nil
}

func (c *DB) createTable(schema string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := c.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (c *DB) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// Get returns the cached value for key if present and not expired. A
// per-row TTL recorded at Set time wins over the fallback ttl argument.
func (c *DB) Get(tableName, key string, ttl time.Duration) (string, bool, error) {
	if err := validateTableName(tableName); err != nil {
		return "", false, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	query := fmt.Sprintf("SELECT data, cached_at, ttl_seconds FROM %s WHERE cache_key = ?", tableName)

	var data string
	var cachedAt time.Time
	var ttlSeconds sql.NullInt64
	err := c.db.QueryRow(query, key).Scan(&data, &cachedAt, &ttlSeconds)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to query cache: %w", err)
	}

	effective := ttl
	if ttlSeconds.Valid && ttlSeconds.Int64 > 0 {
		effective = time.Duration(ttlSeconds.Int64) * time.Second
	}
	if age := time.Now().UTC().Sub(cachedAt); age > effective {
		slog.Debug("Cache expired", "table", tableName, "key", key, "age", age)
		return "", false, nil
	}
	return data, true, nil
}

// Set stores a value, replacing any previous entry for the key. A ttl of 0
// means "use the reader's TTL".
func (c *DB) Set(tableName, key, data string, ttl time.Duration) error {
	if err := validateTableName(tableName); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	var ttlSeconds any
	if ttl > 0 {
		ttlSeconds = int64(ttl / time.Second)
	}
	query := fmt.Sprintf(
		"INSERT OR REPLACE INTO %s (cache_key, data, cached_at, ttl_seconds) VALUES (?, ?, CURRENT_TIMESTAMP, ?)",
		tableName,
	)
	if _, err := c.db.Exec(query, key, data, ttlSeconds); err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}
	return nil
}

// InvalidateSource deletes every entry in the given cache table and returns
// the number of rows removed.
func (c *DB) InvalidateSource(tableName string) (int64, error) {
	if err := validateTableName(tableName); err != nil {
		return 0, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	result, err := c.db.Exec(fmt.Sprintf("DELETE FROM %s", tableName))
	if err != nil {
		return 0, fmt.Errorf("failed to delete cache entries: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	slog.Debug("Cache table cleared", "table", tableName, "rows_deleted", rows)
	return rows, nil
}

// validateTableName guards the fmt.Sprintf interpolation above: only
// whitelisted table names are accepted.
func validateTableName(tableName string) error {
	if !validTableNames[tableName] {
		return fmt.Errorf("invalid cache table name: %s", tableName)
	}
	return nil
}

// GetOrFetch returns the cached value for cacheKey, or calls fetchFunc and
// caches its result. The second return value reports a cache hit.
func GetOrFetch[T any](tableName, cacheKey string, fetchFunc FetchFunc[T]) (T, bool, error) {
	return getOrFetch(tableName, cacheKey, fetchFunc, nil)
}

// GetOrFetchWithTTL is GetOrFetch with a per-result TTL decided after the
// fetch, used for negative caching of "not found" responses.
func GetOrFetchWithTTL[T any](tableName, cacheKey string, fetchFunc FetchFunc[T], ttlSelector func(T) time.Duration) (T, bool, error) {
	return getOrFetch(tableName, cacheKey, fetchFunc, ttlSelector)
}

// SelectNegativeTTL builds a TTL selector that caches "not found" results
// for NegativeTTL and everything else for the configured default.
func SelectNegativeTTL[T any](isNotFound func(T) bool) func(T) time.Duration {
	return func(result T) time.Duration {
		if isNotFound(result) {
			return NegativeTTL
		}
		return 0
	}
}

func getOrFetch[T any](tableName, cacheKey string, fetchFunc FetchFunc[T], ttlSelector func(T) time.Duration) (T, bool, error) {
	var zero T

	db, err := GetGlobalCache()
	if err != nil {
		// Cache trouble never blocks a fetch.
		slog.Warn("Failed to initialize cache, fetching directly", "error", err)
		data, fetchErr := fetchFunc()
		return data, false, fetchErr
	}

	ttl := configuredTTL()

	cached, hit, err := db.Get(tableName, cacheKey, ttl)
	if err == nil && hit {
		var result T
		if err := json.Unmarshal([]byte(cached), &result); err == nil {
			slog.Debug("Cache hit", "table", tableName, "key", cacheKey)
			return result, true, nil
		}
		slog.Warn("Failed to unmarshal cached data, refetching", "table", tableName, "key", cacheKey, "error", err)
	}

	slog.Debug("Cache miss, fetching", "table", tableName, "key", cacheKey)
	data, err := fetchFunc()
	if err != nil {
		return zero, false, fmt.Errorf("failed to fetch data: %w", err)
	}

	var entryTTL time.Duration
	if ttlSelector != nil {
		entryTTL = ttlSelector(data)
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		slog.Warn("Failed to marshal data for caching", "table", tableName, "key", cacheKey, "error", err)
		return data, false, nil
	}
	if err := db.Set(tableName, cacheKey, string(jsonData), entryTTL); err != nil {
		slog.Warn("Failed to cache data", "table", tableName, "key", cacheKey, "error", err)
	}
	return data, false, nil
}

func configuredTTL() time.Duration {
	ttlStr := viper.GetString("cache.ttl")
	if ttlStr == "" {
		return DefaultTTL
	}
	ttl, err := time.ParseDuration(ttlStr)
	if err != nil {
		slog.Warn("Invalid cache TTL, using default", "ttl", ttlStr, "error", err)
		return DefaultTTL
	}
	return ttl
}
