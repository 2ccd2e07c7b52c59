package syncer

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/google/uuid"

	"github.com/medialibre/mediatheque/internal/canonical"
	"github.com/medialibre/mediatheque/internal/sources/tmdb"
	"github.com/medialibre/mediatheque/internal/store"
)

// MovieFetcher supplies full movie payloads. *tmdb.Client satisfies it.
type MovieFetcher interface {
	GetMovieDetails(ctx context.Context, movieID int) (*tmdb.MovieDetails, error)
}

// ShowFetcher supplies full show and season payloads. *tmdb.Client
// satisfies it.
type ShowFetcher interface {
	GetTVDetails(ctx context.Context, tvID int) (*tmdb.TVDetails, error)
	GetSeason(ctx context.Context, tvID, seasonNumber int) (*tmdb.SeasonDetails, error)
}

// SyncMovie fetches a movie with all appended sub-resources, enriches its
// synopsis and upserts the full row including the nested JSON columns.
func (s *Syncer) SyncMovie(ctx context.Context, client MovieFetcher, movieID int, imageBase string) (int64, bool, error) {
	details, err := client.GetMovieDetails(ctx, movieID)
	if err != nil {
		return 0, false, fmt.Errorf("failed to fetch movie %d: %w", movieID, err)
	}

	synopsis, provenance := enrichSynopsis(ctx, s.translator, details.Overview,
		details.Translations, s.language, s.fallback, "movie synopsis")

	row := mediaFromRecord(tmdb.NormalizeMovie(details, imageBase), canonical.DomainMovie)
	row.Synopsis = synopsis
	row.SynopsisSource = provenance
	row.Credits = encodeCredits(details.Credits)
	row.Images = encodeImages(details.Images)
	row.Keywords = encodeKeywords(details.Keywords)
	row.Providers = encodeProviders(details.WatchProviders)
	row.ExternalIDs = encodeExternalIDs(details.ExternalIDs)
	row.Translations = encodeTranslations(details.Translations)

	started := now()
	var localID int64
	var created bool
	err = s.store.InTx(ctx, func(tx *sql.Tx) error {
		var txErr error
		localID, created, txErr = store.NewMediaRepo(tx).Upsert(ctx, row)
		return txErr
	})

	s.audit(ctx, &store.SyncRun{
		ID:             uuid.NewString(),
		SourceName:     string(canonical.SourceTMDB),
		ExternalID:     strconv.Itoa(movieID),
		LocalID:        localID,
		Created:        created,
		SynopsisSource: provenance,
		Error:          errText(err),
		StartedAt:      started,
		FinishedAt:     now(),
	})
	if err != nil {
		return 0, false, fmt.Errorf("failed to sync movie %d: %w", movieID, err)
	}
	return localID, created, nil
}

// SyncTV fetches a show, upserts it with its nested JSON columns, then
// syncs every season and its episodes. Seasons with a negative number are
// specials placeholders and are skipped entirely.
func (s *Syncer) SyncTV(ctx context.Context, client ShowFetcher, tvID int, imageBase string) (int64, bool, error) {
	details, err := client.GetTVDetails(ctx, tvID)
	if err != nil {
		return 0, false, fmt.Errorf("failed to fetch show %d: %w", tvID, err)
	}

	synopsis, provenance := enrichSynopsis(ctx, s.translator, details.Overview,
		details.Translations, s.language, s.fallback, "TV show synopsis")

	row := mediaFromRecord(tmdb.NormalizeTV(details, imageBase), canonical.DomainTV)
	row.Synopsis = synopsis
	row.SynopsisSource = provenance
	row.Credits = encodeCredits(details.Credits)
	row.Images = encodeImages(details.Images)
	row.Keywords = encodeKeywords(details.Keywords)
	row.Providers = encodeProviders(details.WatchProviders)
	row.ExternalIDs = encodeExternalIDs(details.ExternalIDs)
	row.Translations = encodeTranslations(details.Translations)

	started := now()
	var localID int64
	var created bool
	err = s.store.InTx(ctx, func(tx *sql.Tx) error {
		var txErr error
		localID, created, txErr = store.NewMediaRepo(tx).Upsert(ctx, row)
		if txErr != nil {
			return txErr
		}
		return s.syncSeasons(ctx, tx, client, tvID, localID, details.Seasons, imageBase)
	})

	s.audit(ctx, &store.SyncRun{
		ID:             uuid.NewString(),
		SourceName:     string(canonical.SourceTMDB),
		ExternalID:     strconv.Itoa(tvID),
		LocalID:        localID,
		Created:        created,
		SynopsisSource: provenance,
		Error:          errText(err),
		StartedAt:      started,
		FinishedAt:     now(),
	})
	if err != nil {
		return 0, false, fmt.Errorf("failed to sync show %d: %w", tvID, err)
	}
	return localID, created, nil
}

func (s *Syncer) syncSeasons(ctx context.Context, tx *sql.Tx, client ShowFetcher,
	tvID int, showID int64, summaries []tmdb.SeasonSummary, imageBase string) error {

	seasonRepo := store.NewSeasonRepo(tx)
	episodeRepo := store.NewEpisodeRepo(tx)

	for _, summary := range summaries {
		if summary.SeasonNumber < 0 {
			slog.Debug("skipping specials season", "show", tvID, "season", summary.SeasonNumber)
			continue
		}

		season, err := client.GetSeason(ctx, tvID, summary.SeasonNumber)
		if err != nil {
			return fmt.Errorf("failed to fetch season %d: %w", summary.SeasonNumber, err)
		}

		posterURL := ""
		if season.PosterPath != "" {
			posterURL = imageBase + season.PosterPath
		}
		if err := seasonRepo.Upsert(ctx, &store.Season{
			ShowID:       showID,
			SeasonNumber: season.SeasonNumber,
			Name:         season.Name,
			Overview:     season.Overview,
			EpisodeCount: len(season.Episodes),
			AirDate:      season.AirDate,
			PosterURL:    posterURL,
		}); err != nil {
			return err
		}

		for _, ep := range season.Episodes {
			stillURL := ""
			if ep.StillPath != "" {
				stillURL = imageBase + ep.StillPath
			}
			if err := episodeRepo.Upsert(ctx, &store.Episode{
				ShowID:         showID,
				SeasonNumber:   ep.SeasonNumber,
				EpisodeNumber:  ep.EpisodeNumber,
				Name:           ep.Name,
				Overview:       ep.Overview,
				AirDate:        ep.AirDate,
				Runtime:        ep.Runtime,
				CommunityScore: ep.VoteAverage,
				StillURL:       stillURL,
			}); err != nil {
				return err
			}
		}
	}
	return nil
}
