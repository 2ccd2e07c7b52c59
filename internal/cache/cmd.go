package cache

import (
	"fmt"
	"log/slog"

	"github.com/spf13/viper"
)

// ClearCmd is the "cache clear" subcommand.
type ClearCmd struct {
	Source string `arg:"" help:"Cache source to clear: googlebooks, openlibrary, bnf, tmdb, tvmaze" required:""`
}

func (c *ClearCmd) Run() error {
	cacheDB := viper.GetString("cache.dbfile")
	slog.Info("Clearing cache", "source", c.Source, "database", cacheDB)

	tableName := c.Source + "_cache"
	if !validTableNames[tableName] {
		return fmt.Errorf("invalid cache source %q; valid sources are: googlebooks, openlibrary, bnf, tmdb, tvmaze", c.Source)
	}

	db, err := GetGlobalCache()
	if err != nil {
		return fmt.Errorf("failed to open cache database: %w", err)
	}

	rows, err := db.InvalidateSource(tableName)
	if err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}

	slog.Info("Cache cleared", "source", c.Source, "rows_deleted", rows)
	return nil
}
