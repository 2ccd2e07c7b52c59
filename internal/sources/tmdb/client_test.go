package tmdb

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medialibre/mediatheque/internal/apierr"
	"github.com/medialibre/mediatheque/internal/cache"
	"github.com/medialibre/mediatheque/internal/sources"
)

func setupTestCache(t *testing.T) {
	t.Helper()
	viper.Reset()
	viper.Set("cache.dbfile", filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, cache.ResetGlobalCache())
	t.Cleanup(func() {
		_ = cache.ResetGlobalCache()
		viper.Reset()
	})
}

func TestAPIKeyInQueryWithoutToken(t *testing.T) {
	setupTestCache(t)

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.URL.Query().Get("api_key"))
		assert.Empty(t, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"results": []}`))
	}))
	defer ts.Close()

	client := NewClient("secret", WithBaseURL(ts.URL))
	_, err := client.SearchMovies(context.Background(), "heat", sources.Options{})
	require.NoError(t, err)
}

func TestBearerTokenTakesPrecedence(t *testing.T) {
	setupTestCache(t)

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		// key must be left out of the URL when a token is configured
		assert.Empty(t, r.URL.Query().Get("api_key"))
		_, _ = w.Write([]byte(`{"results": []}`))
	}))
	defer ts.Close()

	client := NewClient("secret", WithBaseURL(ts.URL), WithAccessToken("tok"))
	_, err := client.SearchMovies(context.Background(), "heat", sources.Options{})
	require.NoError(t, err)
}

func TestNoContentYieldsEmptyPayload(t *testing.T) {
	setupTestCache(t)

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer ts.Close()

	client := NewClient("k", WithBaseURL(ts.URL))
	records, err := client.SearchMovies(context.Background(), "nothing", sources.Options{})
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestErrorEmbedsStatusAndBody(t *testing.T) {
	setupTestCache(t)

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"status_message": "Invalid API key"}`))
	}))
	defer ts.Close()

	client := NewClient("bad", WithBaseURL(ts.URL))
	_, err := client.SearchMovies(context.Background(), "heat", sources.Options{})
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, apierr.StatusCode(err))
	assert.Contains(t, err.Error(), "Invalid API key")
}

func TestEmptyQueryShortCircuits(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no network call expected for empty query")
	}))
	defer ts.Close()

	client := NewClient("k", WithBaseURL(ts.URL))
	records, err := client.SearchMovies(context.Background(), "   ", sources.Options{})
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestSearchMoviesNormalizes(t *testing.T) {
	setupTestCache(t)

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/search/movie", r.URL.Path)
		_, _ = w.Write([]byte(`{
			"total_results": 1,
			"results": [{
				"id": 550,
				"title": "Fight Club",
				"original_title": "Fight Club",
				"overview": "An insomniac office worker...",
				"release_date": "1999-10-15",
				"poster_path": "/poster.jpg",
				"vote_average": 8.4,
				"vote_count": 26000,
				"original_language": "en"
			}]
		}`))
	}))
	defer ts.Close()

	client := NewClient("k", WithBaseURL(ts.URL))
	records, err := client.SearchMovies(context.Background(), "fight club", sources.Options{})
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, "550", rec.ExternalID)
	assert.Equal(t, "Fight Club", rec.Title)
	assert.Equal(t, "1999-10-15", rec.ReleaseDate)
	assert.Equal(t, "https://image.tmdb.org/t/p/original/poster.jpg", rec.CoverURL)
}

func TestGetMovieDetailsAppendsSubResources(t *testing.T) {
	setupTestCache(t)

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/movie/550", r.URL.Path)
		require.Equal(t, appendToResponse, r.URL.Query().Get("append_to_response"))
		_, _ = w.Write([]byte(`{
			"id": 550,
			"title": "Fight Club",
			"overview": "An insomniac office worker...",
			"credits": {"cast": [{"id": 819, "name": "Edward Norton", "character": "The Narrator", "order": 0}]},
			"keywords": {"keywords": [{"id": 851, "name": "dual identity"}]},
			"external_ids": {"imdb_id": "tt0137523"},
			"translations": {"translations": [{"iso_639_1": "fr", "data": {"overview": "Un employé de bureau insomniaque..."}}]}
		}`))
	}))
	defer ts.Close()

	client := NewClient("k", WithBaseURL(ts.URL), WithLanguage("fr"))
	details, err := client.GetMovieDetails(context.Background(), 550)
	require.NoError(t, err)
	assert.Equal(t, "tt0137523", details.ExternalIDs.IMDBID)
	require.Len(t, details.Credits.Cast, 1)
	assert.Equal(t, "Edward Norton", details.Credits.Cast[0].Name)
	assert.Equal(t, "dual identity", details.Keywords.All()[0].Name)
	assert.Equal(t, "fr", details.Translations.Translations[0].ISO639)
}

func TestGetSeasonSkipCacheKeyPerLanguage(t *testing.T) {
	setupTestCache(t)

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/tv/100/season/2", r.URL.Path)
		_, _ = w.Write([]byte(`{
			"season_number": 2,
			"name": "Season 2",
			"episodes": [{"episode_number": 1, "season_number": 2, "name": "Pilot II"}]
		}`))
	}))
	defer ts.Close()

	client := NewClient("k", WithBaseURL(ts.URL))
	season, err := client.GetSeason(context.Background(), 100, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, season.SeasonNumber)
	require.Len(t, season.Episodes, 1)
}
