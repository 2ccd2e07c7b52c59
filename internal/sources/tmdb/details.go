package tmdb

import (
	"context"
	"fmt"

	"github.com/medialibre/mediatheque/internal/cache"
	"github.com/medialibre/mediatheque/internal/sources"
)

// GetMovieDetails fetches a movie with every appended sub-resource the sync
// engine persists.
func (c *Client) GetMovieDetails(ctx context.Context, movieID int) (*MovieDetails, error) {
	params := sources.NewParams().Set("append_to_response", appendToResponse)
	endpoint := c.endpoint(fmt.Sprintf("/movie/%d", movieID), params)
	cacheKey := fmt.Sprintf("movie:%d:%s", movieID, c.language)

	details, _, err := cache.GetOrFetch("tmdb_cache", cacheKey, func() (*MovieDetails, error) {
		var d MovieDetails
		if err := c.getJSON(ctx, endpoint, &d); err != nil {
			return nil, err
		}
		return &d, nil
	})
	return details, err
}

// GetTVDetails fetches a TV show with every appended sub-resource.
func (c *Client) GetTVDetails(ctx context.Context, tvID int) (*TVDetails, error) {
	params := sources.NewParams().Set("append_to_response", appendToResponse)
	endpoint := c.endpoint(fmt.Sprintf("/tv/%d", tvID), params)
	cacheKey := fmt.Sprintf("tv:%d:%s", tvID, c.language)

	details, _, err := cache.GetOrFetch("tmdb_cache", cacheKey, func() (*TVDetails, error) {
		var d TVDetails
		if err := c.getJSON(ctx, endpoint, &d); err != nil {
			return nil, err
		}
		return &d, nil
	})
	return details, err
}

// GetSeason fetches one season of a show including its episode list.
func (c *Client) GetSeason(ctx context.Context, tvID, seasonNumber int) (*SeasonDetails, error) {
	endpoint := c.endpoint(fmt.Sprintf("/tv/%d/season/%d", tvID, seasonNumber), nil)
	cacheKey := fmt.Sprintf("tv:%d:season:%d:%s", tvID, seasonNumber, c.language)

	season, _, err := cache.GetOrFetch("tmdb_cache", cacheKey, func() (*SeasonDetails, error) {
		var s SeasonDetails
		if err := c.getJSON(ctx, endpoint, &s); err != nil {
			return nil, err
		}
		return &s, nil
	})
	return season, err
}
