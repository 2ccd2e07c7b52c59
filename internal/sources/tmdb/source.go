package tmdb

import (
	"context"
	"fmt"
	"strconv"

	"github.com/medialibre/mediatheque/internal/canonical"
	"github.com/medialibre/mediatheque/internal/sources"
)

// MovieSource adapts the client to the generic source contract for movies.
type MovieSource struct {
	Client *Client
}

var _ sources.Client = (*MovieSource)(nil)

// Name identifies this source.
func (s *MovieSource) Name() canonical.Source {
	return canonical.SourceTMDB
}

// Search queries TMDB movies.
func (s *MovieSource) Search(ctx context.Context, query string, opts sources.Options) ([]canonical.Record, error) {
	return s.Client.SearchMovies(ctx, query, opts)
}

// GetByID fetches one movie by numeric TMDB id.
func (s *MovieSource) GetByID(ctx context.Context, id string) (*canonical.Record, error) {
	movieID, err := strconv.Atoi(id)
	if err != nil {
		return nil, fmt.Errorf("invalid tmdb movie id %q: %w", id, err)
	}
	details, err := s.Client.GetMovieDetails(ctx, movieID)
	if err != nil {
		return nil, err
	}
	rec := NormalizeMovie(details, s.Client.imageBaseURL)
	return &rec, nil
}

// TVSource adapts the client to the generic source contract for TV shows.
type TVSource struct {
	Client *Client
}

var _ sources.Client = (*TVSource)(nil)

// Name identifies this source.
func (s *TVSource) Name() canonical.Source {
	return canonical.SourceTMDB
}

// Search queries TMDB TV shows.
func (s *TVSource) Search(ctx context.Context, query string, opts sources.Options) ([]canonical.Record, error) {
	return s.Client.SearchTV(ctx, query, opts)
}

// GetByID fetches one show by numeric TMDB id.
func (s *TVSource) GetByID(ctx context.Context, id string) (*canonical.Record, error) {
	tvID, err := strconv.Atoi(id)
	if err != nil {
		return nil, fmt.Errorf("invalid tmdb tv id %q: %w", id, err)
	}
	details, err := s.Client.GetTVDetails(ctx, tvID)
	if err != nil {
		return nil, err
	}
	rec := NormalizeTV(details, s.Client.imageBaseURL)
	return &rec, nil
}

// NormalizeMovie maps full movie details onto the canonical shape.
func NormalizeMovie(d *MovieDetails, imageBase string) canonical.Record {
	rec := canonical.Record{
		ExternalID:     strconv.Itoa(d.ID),
		SourceName:     canonical.SourceTMDB,
		Title:          d.Title,
		OriginalTitle:  d.OriginalTitle,
		Synopsis:       d.Overview,
		ReleaseDate:    canonical.NormalizeDate(d.ReleaseDate),
		LanguageCode:   d.OriginalLanguage,
		CommunityScore: d.VoteAverage,
		CommunityVotes: d.VoteCount,
		DetailURL:      "https://www.themoviedb.org/movie/" + strconv.Itoa(d.ID),
	}
	for _, g := range d.Genres {
		rec.Genres = append(rec.Genres, g.Name)
	}
	rec.Genres = canonical.DedupeStrings(rec.Genres)
	if d.PosterPath != "" {
		rec.CoverURL = imageBase + d.PosterPath
	}
	for _, member := range d.Credits.Crew {
		if member.Job == "Director" {
			rec.Authors = append(rec.Authors, member.Name)
		}
	}
	return rec
}

// NormalizeTV maps full TV details onto the canonical shape. The first
// network stands in for the publisher field.
func NormalizeTV(d *TVDetails, imageBase string) canonical.Record {
	rec := canonical.Record{
		ExternalID:     strconv.Itoa(d.ID),
		SourceName:     canonical.SourceTMDB,
		Title:          d.Name,
		OriginalTitle:  d.OriginalName,
		Synopsis:       d.Overview,
		ReleaseDate:    canonical.NormalizeDate(d.FirstAirDate),
		LanguageCode:   d.OriginalLanguage,
		CommunityScore: d.VoteAverage,
		CommunityVotes: d.VoteCount,
		SeasonCount:    d.NumberOfSeasons,
		EpisodeCount:   d.NumberOfEpisodes,
		DetailURL:      "https://www.themoviedb.org/tv/" + strconv.Itoa(d.ID),
	}
	for _, g := range d.Genres {
		rec.Genres = append(rec.Genres, g.Name)
	}
	rec.Genres = canonical.DedupeStrings(rec.Genres)
	if len(d.Networks) > 0 {
		rec.Publisher = d.Networks[0].Name
	}
	if d.PosterPath != "" {
		rec.CoverURL = imageBase + d.PosterPath
	}
	return rec
}
