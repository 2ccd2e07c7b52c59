package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Media is one persisted catalog row, shared across all users. Its identity
// is the (SourceID, SourceName) pair; once created the pair never changes,
// only descriptive columns are rewritten by later syncs.
type Media struct {
	ID             int64
	SourceID       string
	SourceName     string
	Domain         string
	Title          string
	OriginalTitle  string
	Subtitle       string
	Authors        *string
	Publisher      string
	ReleaseDate    string
	LanguageCode   string
	Synopsis       string
	SynopsisSource string
	Genres         *string
	ISBN10         string
	ISBN13         string
	CoverURL       string
	DetailURL      string
	PageCount      int
	CommunityScore float64
	CommunityVotes int
	Price          *float64
	PriceCurrency  string
	SeasonCount    int
	EpisodeCount   int
	Credits        *string
	Images         *string
	Keywords       *string
	Providers      *string
	ExternalIDs    *string
	Translations   *string
	CreatedAt      string
	UpdatedAt      string
}

// MediaRepo reads and writes media rows.
type MediaRepo struct {
	q Querier
}

// NewMediaRepo binds a media repository to a connection or transaction.
func NewMediaRepo(q Querier) *MediaRepo {
	return &MediaRepo{q: q}
}

const mediaColumns = `id, source_id, source_name, domain, title, original_title,
	subtitle, authors, publisher, release_date, language_code, synopsis,
	synopsis_source, genres, isbn10, isbn13, cover_url, detail_url, page_count,
	community_score, community_votes, price, price_currency, season_count,
	episode_count, credits, images, keywords, providers, external_ids,
	translations, created_at, updated_at`

func scanMedia(row *sql.Row) (*Media, error) {
	var m Media
	err := row.Scan(
		&m.ID, &m.SourceID, &m.SourceName, &m.Domain, &m.Title, &m.OriginalTitle,
		&m.Subtitle, &m.Authors, &m.Publisher, &m.ReleaseDate, &m.LanguageCode,
		&m.Synopsis, &m.SynopsisSource, &m.Genres, &m.ISBN10, &m.ISBN13,
		&m.CoverURL, &m.DetailURL, &m.PageCount, &m.CommunityScore,
		&m.CommunityVotes, &m.Price, &m.PriceCurrency, &m.SeasonCount,
		&m.EpisodeCount, &m.Credits, &m.Images, &m.Keywords, &m.Providers,
		&m.ExternalIDs, &m.Translations, &m.CreatedAt, &m.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan media row: %w", err)
	}
	return &m, nil
}

// GetByID fetches one media row, or nil when absent.
func (r *MediaRepo) GetByID(ctx context.Context, id int64) (*Media, error) {
	row := r.q.QueryRowContext(ctx,
		"SELECT "+mediaColumns+" FROM media WHERE id = ?", id)
	return scanMedia(row)
}

// FindBySource fetches the row keyed by the external identity pair, or nil.
func (r *MediaRepo) FindBySource(ctx context.Context, sourceID, sourceName string) (*Media, error) {
	row := r.q.QueryRowContext(ctx,
		"SELECT "+mediaColumns+" FROM media WHERE source_id = ? AND source_name = ?",
		sourceID, sourceName)
	return scanMedia(row)
}

// FindByISBN fetches the row matching either ISBN form, or nil. Empty
// arguments never match.
func (r *MediaRepo) FindByISBN(ctx context.Context, isbn10, isbn13 string) (*Media, error) {
	if isbn10 == "" && isbn13 == "" {
		return nil, nil
	}
	row := r.q.QueryRowContext(ctx,
		"SELECT "+mediaColumns+` FROM media
		WHERE (isbn13 <> '' AND isbn13 = ?) OR (isbn10 <> '' AND isbn10 = ?)
		LIMIT 1`,
		isbn13, isbn10)
	return scanMedia(row)
}

// Upsert writes m keyed by (source_id, source_name). On conflict every
// descriptive column is overwritten and updated_at refreshed; the primary
// key survives. Returns the local id and whether a row was created.
func (r *MediaRepo) Upsert(ctx context.Context, m *Media) (int64, bool, error) {
	existing, err := r.FindBySource(ctx, m.SourceID, m.SourceName)
	if err != nil {
		return 0, false, err
	}

	// an isbn13 arriving from a new edition may still sit on an older row;
	// the newer claim wins and the older row loses its secondary identifier
	if m.ISBN13 != "" {
		if err := r.releaseISBN13(ctx, m.ISBN13, m.SourceID, m.SourceName); err != nil {
			return 0, false, err
		}
	}

	_, err = r.q.ExecContext(ctx, `
		INSERT INTO media (
			source_id, source_name, domain, title, original_title, subtitle,
			authors, publisher, release_date, language_code, synopsis,
			synopsis_source, genres, isbn10, isbn13, cover_url, detail_url,
			page_count, community_score, community_votes, price, price_currency,
			season_count, episode_count, credits, images, keywords, providers,
			external_ids, translations
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (source_id, source_name) DO UPDATE SET
			domain = excluded.domain,
			title = excluded.title,
			original_title = excluded.original_title,
			subtitle = excluded.subtitle,
			authors = excluded.authors,
			publisher = excluded.publisher,
			release_date = excluded.release_date,
			language_code = excluded.language_code,
			synopsis = excluded.synopsis,
			synopsis_source = excluded.synopsis_source,
			genres = excluded.genres,
			isbn10 = excluded.isbn10,
			isbn13 = excluded.isbn13,
			cover_url = excluded.cover_url,
			detail_url = excluded.detail_url,
			page_count = excluded.page_count,
			community_score = excluded.community_score,
			community_votes = excluded.community_votes,
			price = excluded.price,
			price_currency = excluded.price_currency,
			season_count = excluded.season_count,
			episode_count = excluded.episode_count,
			credits = excluded.credits,
			images = excluded.images,
			keywords = excluded.keywords,
			providers = excluded.providers,
			external_ids = excluded.external_ids,
			translations = excluded.translations,
			updated_at = datetime('now')`,
		m.SourceID, m.SourceName, m.Domain, m.Title, m.OriginalTitle, m.Subtitle,
		m.Authors, m.Publisher, m.ReleaseDate, m.LanguageCode, m.Synopsis,
		m.SynopsisSource, m.Genres, m.ISBN10, m.ISBN13, m.CoverURL, m.DetailURL,
		m.PageCount, m.CommunityScore, m.CommunityVotes, m.Price, m.PriceCurrency,
		m.SeasonCount, m.EpisodeCount, m.Credits, m.Images, m.Keywords,
		m.Providers, m.ExternalIDs, m.Translations,
	)
	if err != nil {
		return 0, false, fmt.Errorf("failed to upsert media: %w", err)
	}

	if existing != nil {
		return existing.ID, false, nil
	}
	created, err := r.FindBySource(ctx, m.SourceID, m.SourceName)
	if err != nil {
		return 0, false, err
	}
	if created == nil {
		return 0, false, fmt.Errorf("media row missing after upsert")
	}
	return created.ID, true, nil
}

// releaseISBN13 clears the given isbn13 from any row other than the one
// identified by (sourceID, sourceName), so the unique index accepts the
// incoming write.
func (r *MediaRepo) releaseISBN13(ctx context.Context, isbn13, sourceID, sourceName string) error {
	_, err := r.q.ExecContext(ctx, `
		UPDATE media SET isbn13 = '', updated_at = datetime('now')
		WHERE isbn13 = ? AND NOT (source_id = ? AND source_name = ?)`,
		isbn13, sourceID, sourceName)
	if err != nil {
		return fmt.Errorf("failed to release isbn13: %w", err)
	}
	return nil
}

// Delete removes a media row; overlays, seasons, episodes and ownership
// rows cascade.
func (r *MediaRepo) Delete(ctx context.Context, id int64) error {
	if _, err := r.q.ExecContext(ctx, "DELETE FROM media WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete media: %w", err)
	}
	return nil
}
