package googlebooks

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

func sourcesOptions() sources.Options {
	return sources.Options{}
}

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

func TestSearchEmptyQueryShortCircuits(t *testing.T) {
	setupTestCache(t)

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no network call expected for empty query")
	}))
	defer ts.Close()

	client := NewClientWithBaseURL(ts.URL)

	for _, query := range []string{"", "   "} {
		records, err := client.Search(context.Background(), query, sourcesOptions())
		require.NoError(t, err)
		assert.Empty(t, records)
	}
}

func TestSearchDecodesAndNormalizes(t *testing.T) {
	setupTestCache(t)

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "tintin", r.URL.Query().Get("q"))
		require.Equal(t, "20", r.URL.Query().Get("maxResults"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"totalItems": 1,
			"items": [{
				"id": "abc123",
				"volumeInfo": {
					"title": "Tintin au Tibet",
					"authors": ["Hergé"],
					"publishedDate": "1960",
					"language": "fr"
				}
			}]
		}`))
	}))
	defer ts.Close()

	client := NewClientWithBaseURL(ts.URL)
	records, err := client.Search(context.Background(), "tintin", sourcesOptions())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Tintin au Tibet", records[0].Title)
	assert.Equal(t, "1960-01-01", records[0].ReleaseDate)
}

func TestSearchNon2xxCarriesStatus(t *testing.T) {
	setupTestCache(t)

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": {"message": "quota exceeded"}}`))
	}))
	defer ts.Close()

	client := NewClientWithBaseURL(ts.URL)
	_, err := client.Search(context.Background(), "tintin", sourcesOptions())
	require.Error(t, err)
	assert.Equal(t, http.StatusTooManyRequests, apierr.StatusCode(err))
}

func TestGetByIDRequiresID(t *testing.T) {
	client := NewClient()
	_, err := client.GetByID(context.Background(), "")
	require.Error(t, err)
}
