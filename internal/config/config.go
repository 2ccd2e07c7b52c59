// Package config holds the viper-backed global configuration snapshot.
package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Global configuration variables, refreshed by InitConfig.
var (
	// TMDBAPIKey authenticates TMDb requests via query parameter.
	TMDBAPIKey string
	// TMDBAccessToken authenticates TMDb requests via bearer header.
	// When both are set the token wins and the key is left out of the URL.
	TMDBAccessToken string
	// GoogleBooksAPIKey is optional; Google Books works unauthenticated at
	// a lower quota.
	GoogleBooksAPIKey string
	// GroqAPIKey enables the synopsis translation fallback. Absence is a
	// normal, silently skipped condition.
	GroqAPIKey string
	// Language is the preferred metadata language (two-letter code).
	Language string
	// FallbackLanguage is tried for synopses before the translation service.
	FallbackLanguage string
	// LibraryDBFile is the path to the media library SQLite database.
	LibraryDBFile string
	// CoverOutputDir is where downloaded cover images are stored.
	CoverOutputDir string
)

// InitConfig sets defaults and snapshots viper values into the globals.
func InitConfig() {
	viper.SetDefault("language", "fr")
	viper.SetDefault("fallback_language", "en")
	viper.SetDefault("library.dbfile", "./mediatheque.db")
	viper.SetDefault("covers.dir", "./covers")

	TMDBAPIKey = viper.GetString("TMDBAPIKey")
	TMDBAccessToken = viper.GetString("TMDBAccessToken")
	GoogleBooksAPIKey = viper.GetString("GoogleBooksAPIKey")
	GroqAPIKey = viper.GetString("GroqAPIKey")
	Language = viper.GetString("language")
	FallbackLanguage = viper.GetString("fallback_language")
	LibraryDBFile = viper.GetString("library.dbfile")
	CoverOutputDir = viper.GetString("covers.dir")
}

// defaultPriorities is the compiled-in source precedence per domain. The
// order decides which source fills a merge slot first.
var defaultPriorities = map[string][]string{
	"book":  {"google_books", "open_library"},
	"bd":    {"bnf", "google_books"},
	"comic": {"google_books", "open_library"},
	"manga": {"google_books", "open_library"},
	"movie": {"tmdb"},
	"tv":    {"tvmaze", "tmdb"},
}

// SourcePriority returns the ordered source list for a domain. A config key
// "sources.priority.<domain>" overrides the compiled default.
func SourcePriority(domain string) []string {
	domain = strings.ToLower(strings.TrimSpace(domain))
	if configured := viper.GetStringSlice("sources.priority." + domain); len(configured) > 0 {
		return configured
	}
	if order, ok := defaultPriorities[domain]; ok {
		return order
	}
	return defaultPriorities["book"]
}
