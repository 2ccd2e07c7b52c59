package tvmaze

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

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

const showPayload = `{
	"id": 82,
	"url": "https://www.tvmaze.com/shows/82/game-of-thrones",
	"name": "Game of Thrones",
	"language": "English",
	"genres": ["Drama", "Adventure", "Fantasy"],
	"premiered": "2011-04-17",
	"rating": {"average": 8.9},
	"network": {"id": 8, "name": "HBO"},
	"image": {"medium": "https://img.example/m.jpg", "original": "https://img.example/o.jpg"},
	"summary": "<p>Based on the bestselling book series, <b>Game of Thrones</b> chronicles an epic struggle for power.</p>"
}`

func TestSearchNormalizesScoredHits(t *testing.T) {
	setupTestCache(t)

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/search/shows", r.URL.Path)
		require.Equal(t, "thrones", r.URL.Query().Get("q"))
		_, _ = w.Write([]byte(`[{"score": 0.92, "show": ` + showPayload + `}]`))
	}))
	defer ts.Close()

	client := NewClientWithBaseURL(ts.URL)
	records, err := client.Search(context.Background(), "thrones", sources.Options{})
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, "82", rec.ExternalID)
	assert.Equal(t, "Game of Thrones", rec.Title)
	assert.Equal(t, "en", rec.LanguageCode)
	assert.Equal(t, "HBO", rec.Publisher)
	assert.Equal(t, "2011-04-17", rec.ReleaseDate)
	assert.Equal(t, 8.9, rec.CommunityScore)
	assert.Equal(t, "https://img.example/o.jpg", rec.CoverURL)
	assert.Equal(t, "Based on the bestselling book series, Game of Thrones chronicles an epic struggle for power.", rec.Synopsis)
}

func TestSearchEmptyQueryNoNetwork(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no network call expected for empty query")
	}))
	defer ts.Close()

	client := NewClientWithBaseURL(ts.URL)
	records, err := client.Search(context.Background(), "  ", sources.Options{})
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestSingleSearchNoContent(t *testing.T) {
	setupTestCache(t)

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer ts.Close()

	client := NewClientWithBaseURL(ts.URL)
	rec, err := client.SingleSearch(context.Background(), "unknown show")
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestGetShowEmbedsSeasonsAndEpisodes(t *testing.T) {
	setupTestCache(t)

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/shows/82", r.URL.Path)
		assert.ElementsMatch(t, []string{"seasons", "episodes"}, r.URL.Query()["embed[]"])
		_, _ = w.Write([]byte(`{
			"id": 82,
			"name": "Game of Thrones",
			"language": "English",
			"_embedded": {
				"seasons": [
					{"id": 1, "number": 1, "episodeOrder": 10, "premiereDate": "2011-04-17"},
					{"id": 2, "number": 2, "episodeOrder": 10, "premiereDate": "2012-04-01"},
					{"id": 3, "number": -1, "name": "Specials"}
				],
				"episodes": [
					{"id": 10, "name": "Winter Is Coming", "season": 1, "number": 1, "airdate": "2011-04-17"},
					{"id": 11, "name": "The Kingsroad", "season": 1, "number": 2, "airdate": "2011-04-24"}
				]
			}
		}`))
	}))
	defer ts.Close()

	client := NewClientWithBaseURL(ts.URL)
	show, err := client.GetShow(context.Background(), "82")
	require.NoError(t, err)
	require.Len(t, show.Embedded.Seasons, 3)
	require.Len(t, show.Embedded.Episodes, 2)

	// the negative "specials" season does not count
	rec := NormalizeShow(*show)
	assert.Equal(t, 2, rec.SeasonCount)
	assert.Equal(t, 2, rec.EpisodeCount)
}

func TestEmptyLookupsCacheOnNegativeTTL(t *testing.T) {
	setupTestCache(t)

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/shows/999":
			w.WriteHeader(http.StatusNoContent)
		case "/shows/82":
			_, _ = w.Write([]byte(showPayload))
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer ts.Close()

	client := NewClientWithBaseURL(ts.URL)

	rec, err := client.GetByID(context.Background(), "999")
	require.NoError(t, err)
	assert.Nil(t, rec)

	rec, err = client.GetByID(context.Background(), "82")
	require.NoError(t, err)
	require.NotNil(t, rec)

	// the empty lookup expires after a week, the found show keeps the
	// reader's default TTL (NULL row ttl)
	db, err := sql.Open("sqlite", viper.GetString("cache.dbfile"))
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	var ttlSeconds sql.NullInt64
	err = db.QueryRow("SELECT ttl_seconds FROM tvmaze_cache WHERE cache_key = ?", "show:999").Scan(&ttlSeconds)
	require.NoError(t, err)
	require.True(t, ttlSeconds.Valid)
	assert.Equal(t, int64(cache.NegativeTTL/time.Second), ttlSeconds.Int64)

	err = db.QueryRow("SELECT ttl_seconds FROM tvmaze_cache WHERE cache_key = ?", "show:82").Scan(&ttlSeconds)
	require.NoError(t, err)
	assert.False(t, ttlSeconds.Valid)
}

func TestErrorCarriesStatus(t *testing.T) {
	setupTestCache(t)

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"name": "Not Found", "status": 404}`))
	}))
	defer ts.Close()

	client := NewClientWithBaseURL(ts.URL)
	_, err := client.GetShow(context.Background(), "999999")
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, apierr.StatusCode(err))
}

func TestStripHTML(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"paragraph", "<p>Plain text.</p>", "Plain text."},
		{"nested tags", "<p>An <b>epic</b> <i>struggle</i>.</p>", "An epic struggle."},
		{"no markup", "Already clean", "Already clean"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripHTML(tt.in))
		})
	}
}

func TestLanguageCodePassthrough(t *testing.T) {
	assert.Equal(t, "ja", languageCode("Japanese"))
	assert.Equal(t, "en", languageCode("English"))
	assert.Equal(t, "", languageCode(""))
	assert.Equal(t, "Klingon", languageCode("Klingon"))
}
