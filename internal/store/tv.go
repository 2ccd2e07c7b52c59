package store

import (
	"context"
	"fmt"
)

// Season is one persisted season row, owned by its show.
type Season struct {
	ID           int64
	ShowID       int64
	SeasonNumber int
	Name         string
	Overview     string
	EpisodeCount int
	AirDate      string
	PosterURL    string
}

// SeasonRepo reads and writes season rows.
type SeasonRepo struct {
	q Querier
}

// NewSeasonRepo binds a season repository to a connection or transaction.
func NewSeasonRepo(q Querier) *SeasonRepo {
	return &SeasonRepo{q: q}
}

// Upsert writes a season keyed by (show_id, season_number).
func (r *SeasonRepo) Upsert(ctx context.Context, s *Season) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO seasons (show_id, season_number, name, overview, episode_count, air_date, poster_url)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (show_id, season_number) DO UPDATE SET
			name = excluded.name,
			overview = excluded.overview,
			episode_count = excluded.episode_count,
			air_date = excluded.air_date,
			poster_url = excluded.poster_url,
			updated_at = datetime('now')`,
		s.ShowID, s.SeasonNumber, s.Name, s.Overview, s.EpisodeCount, s.AirDate, s.PosterURL)
	if err != nil {
		return fmt.Errorf("failed to upsert season: %w", err)
	}
	return nil
}

// ListByShow returns a show's seasons ordered by number.
func (r *SeasonRepo) ListByShow(ctx context.Context, showID int64) ([]Season, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, show_id, season_number, name, overview, episode_count, air_date, poster_url
		FROM seasons WHERE show_id = ? ORDER BY season_number`, showID)
	if err != nil {
		return nil, fmt.Errorf("failed to list seasons: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var seasons []Season
	for rows.Next() {
		var s Season
		if err := rows.Scan(&s.ID, &s.ShowID, &s.SeasonNumber, &s.Name, &s.Overview,
			&s.EpisodeCount, &s.AirDate, &s.PosterURL); err != nil {
			return nil, fmt.Errorf("failed to scan season: %w", err)
		}
		seasons = append(seasons, s)
	}
	return seasons, rows.Err()
}

// Episode is one persisted episode row, owned by its show.
type Episode struct {
	ID             int64
	ShowID         int64
	SeasonNumber   int
	EpisodeNumber  int
	Name           string
	Overview       string
	AirDate        string
	Runtime        int
	CommunityScore float64
	StillURL       string
}

// EpisodeRepo reads and writes episode rows.
type EpisodeRepo struct {
	q Querier
}

// NewEpisodeRepo binds an episode repository to a connection or transaction.
func NewEpisodeRepo(q Querier) *EpisodeRepo {
	return &EpisodeRepo{q: q}
}

// Upsert writes an episode keyed by (show_id, season_number, episode_number).
func (r *EpisodeRepo) Upsert(ctx context.Context, e *Episode) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO episodes (show_id, season_number, episode_number, name, overview, air_date, runtime, community_score, still_url)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (show_id, season_number, episode_number) DO UPDATE SET
			name = excluded.name,
			overview = excluded.overview,
			air_date = excluded.air_date,
			runtime = excluded.runtime,
			community_score = excluded.community_score,
			still_url = excluded.still_url,
			updated_at = datetime('now')`,
		e.ShowID, e.SeasonNumber, e.EpisodeNumber, e.Name, e.Overview, e.AirDate,
		e.Runtime, e.CommunityScore, e.StillURL)
	if err != nil {
		return fmt.Errorf("failed to upsert episode: %w", err)
	}
	return nil
}

// ListBySeason returns the episodes of one season in order.
func (r *EpisodeRepo) ListBySeason(ctx context.Context, showID int64, seasonNumber int) ([]Episode, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, show_id, season_number, episode_number, name, overview, air_date, runtime, community_score, still_url
		FROM episodes WHERE show_id = ? AND season_number = ? ORDER BY episode_number`,
		showID, seasonNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to list episodes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var episodes []Episode
	for rows.Next() {
		var e Episode
		if err := rows.Scan(&e.ID, &e.ShowID, &e.SeasonNumber, &e.EpisodeNumber,
			&e.Name, &e.Overview, &e.AirDate, &e.Runtime, &e.CommunityScore, &e.StillURL); err != nil {
			return nil, fmt.Errorf("failed to scan episode: %w", err)
		}
		episodes = append(episodes, e)
	}
	return episodes, rows.Err()
}
