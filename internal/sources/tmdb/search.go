package tmdb

import (
	"context"
	"strconv"

	"github.com/medialibre/mediatheque/internal/canonical"
	"github.com/medialibre/mediatheque/internal/sources"
)

type searchItem struct {
	ID               int     `json:"id"`
	MediaType        string  `json:"media_type"`
	Title            string  `json:"title"`
	Name             string  `json:"name"`
	OriginalTitle    string  `json:"original_title"`
	OriginalName     string  `json:"original_name"`
	PosterPath       string  `json:"poster_path"`
	Overview         string  `json:"overview"`
	ReleaseDate      string  `json:"release_date"`
	FirstAirDate     string  `json:"first_air_date"`
	VoteAverage      float64 `json:"vote_average"`
	VoteCount        int     `json:"vote_count"`
	Popularity       float64 `json:"popularity"`
	OriginalLanguage string  `json:"original_language"`
	GenreIDs         []int   `json:"genre_ids"`
}

type searchResponse struct {
	Page         int          `json:"page"`
	TotalPages   int          `json:"total_pages"`
	TotalResults int          `json:"total_results"`
	Results      []searchItem `json:"results"`
}

// SearchMovies searches TMDB movies and returns canonical records.
func (c *Client) SearchMovies(ctx context.Context, query string, opts sources.Options) ([]canonical.Record, error) {
	return c.search(ctx, "/search/movie", "movie", query, opts)
}

// SearchTV searches TMDB TV shows and returns canonical records.
func (c *Client) SearchTV(ctx context.Context, query string, opts sources.Options) ([]canonical.Record, error) {
	return c.search(ctx, "/search/tv", "tv", query, opts)
}

func (c *Client) search(ctx context.Context, path, mediaType, query string, opts sources.Options) ([]canonical.Record, error) {
	if sources.EmptyQuery(query) {
		return []canonical.Record{}, nil
	}

	params := sources.NewParams().
		Set("query", query).
		Set("include_adult", "false")
	endpoint := c.endpoint(path, params)

	var response searchResponse
	if err := c.getJSON(ctx, endpoint, &response); err != nil {
		return nil, err
	}

	limit := opts.Cap()
	records := make([]canonical.Record, 0, limit)
	for _, item := range response.Results {
		if len(records) >= limit {
			break
		}
		records = append(records, normalizeSearchItem(item, mediaType, c.imageBaseURL))
	}
	return records, nil
}

func normalizeSearchItem(item searchItem, mediaType, imageBase string) canonical.Record {
	rec := canonical.Record{
		ExternalID:     strconv.Itoa(item.ID),
		SourceName:     canonical.SourceTMDB,
		Synopsis:       item.Overview,
		LanguageCode:   item.OriginalLanguage,
		CommunityScore: item.VoteAverage,
		CommunityVotes: item.VoteCount,
	}

	if mediaType == "tv" {
		rec.Title = item.Name
		rec.OriginalTitle = item.OriginalName
		rec.ReleaseDate = canonical.NormalizeDate(item.FirstAirDate)
	} else {
		rec.Title = item.Title
		rec.OriginalTitle = item.OriginalTitle
		rec.ReleaseDate = canonical.NormalizeDate(item.ReleaseDate)
	}

	if item.PosterPath != "" {
		rec.CoverURL = imageBase + item.PosterPath
	}
	rec.DetailURL = "https://www.themoviedb.org/" + mediaType + "/" + rec.ExternalID
	return rec
}
