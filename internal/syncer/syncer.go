// Package syncer is the upsert engine: it turns canonical records and full
// TMDb payloads into media rows, idempotently keyed by their external
// identity, and leaves an audit trail of every run.
package syncer

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/medialibre/mediatheque/internal/canonical"
	"github.com/medialibre/mediatheque/internal/sources"
	"github.com/medialibre/mediatheque/internal/store"
)

// Syncer writes external catalog data into the local library.
type Syncer struct {
	store      *store.Store
	clients    map[canonical.Source]sources.Client
	translator Translator
	language   string
	fallback   string
}

// New builds a syncer. clients maps each source to its generic client for
// import-by-id flows; translator may be nil to disable the enrichment hook.
func New(s *store.Store, clients []sources.Client, translator Translator, language, fallback string) *Syncer {
	byName := make(map[canonical.Source]sources.Client, len(clients))
	for _, c := range clients {
		byName[c.Name()] = c
	}
	return &Syncer{
		store:      s,
		clients:    byName,
		translator: translator,
		language:   language,
		fallback:   fallback,
	}
}

// Upsert writes one canonical record, keyed by its (externalID, source)
// pair. Repeating the call with an unchanged record yields the same local
// id and column values, only the updated_at timestamp moves.
func (s *Syncer) Upsert(ctx context.Context, rec canonical.Record, domain canonical.Domain) (int64, bool, error) {
	started := now()
	var localID int64
	var created bool

	err := s.store.InTx(ctx, func(tx *sql.Tx) error {
		var txErr error
		localID, created, txErr = store.NewMediaRepo(tx).Upsert(ctx, mediaFromRecord(rec, domain))
		return txErr
	})

	s.audit(ctx, &store.SyncRun{
		ID:         uuid.NewString(),
		SourceName: string(rec.SourceName),
		ExternalID: rec.ExternalID,
		LocalID:    localID,
		Created:    created,
		Error:      errText(err),
		StartedAt:  started,
		FinishedAt: now(),
	})
	if err != nil {
		return 0, false, fmt.Errorf("failed to upsert %s: %w", rec.Key(), err)
	}
	return localID, created, nil
}

// ImportResult reports an import-by-id outcome.
type ImportResult struct {
	Success       bool
	LocalID       int64
	AlreadyExists bool
}

// Import fetches one item by external id from its source, upserts it and
// ensures the calling user's overlay row, all in one transaction. A zero
// userID imports into the shared catalog without touching overlays.
func (s *Syncer) Import(ctx context.Context, externalID string, source canonical.Source, domain canonical.Domain, userID int64) (*ImportResult, error) {
	client, ok := s.clients[source]
	if !ok {
		return nil, fmt.Errorf("no client registered for source %q", source)
	}

	rec, err := client.GetByID(ctx, externalID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s:%s: %w", source, externalID, err)
	}
	if rec == nil {
		return &ImportResult{}, nil
	}

	started := now()
	var localID int64
	var created bool
	err = s.store.InTx(ctx, func(tx *sql.Tx) error {
		var txErr error
		localID, created, txErr = store.NewMediaRepo(tx).Upsert(ctx, mediaFromRecord(*rec, domain))
		if txErr != nil {
			return txErr
		}
		if userID != 0 {
			return store.NewOverlayRepo(tx).Ensure(ctx, localID, userID)
		}
		return nil
	})

	s.audit(ctx, &store.SyncRun{
		ID:         uuid.NewString(),
		SourceName: string(source),
		ExternalID: externalID,
		LocalID:    localID,
		Created:    created,
		Error:      errText(err),
		StartedAt:  started,
		FinishedAt: now(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to import %s:%s: %w", source, externalID, err)
	}

	slog.Info("import done", "source", source, "external_id", externalID,
		"local_id", localID, "created", created)
	return &ImportResult{Success: true, LocalID: localID, AlreadyExists: !created}, nil
}

// mediaFromRecord maps a canonical record onto a media row.
func mediaFromRecord(rec canonical.Record, domain canonical.Domain) *store.Media {
	return &store.Media{
		SourceID:       rec.ExternalID,
		SourceName:     string(rec.SourceName),
		Domain:         string(domain),
		Title:          rec.Title,
		OriginalTitle:  rec.OriginalTitle,
		Subtitle:       rec.Subtitle,
		Authors:        encodeStrings(rec.Authors),
		Publisher:      rec.Publisher,
		ReleaseDate:    rec.ReleaseDate,
		LanguageCode:   rec.LanguageCode,
		Synopsis:       rec.Synopsis,
		Genres:         encodeStrings(rec.Genres),
		ISBN10:         rec.ISBN10,
		ISBN13:         rec.ISBN13,
		CoverURL:       rec.CoverURL,
		DetailURL:      rec.DetailURL,
		PageCount:      rec.PageCount,
		CommunityScore: rec.CommunityScore,
		CommunityVotes: rec.CommunityVotes,
		Price:          rec.Price,
		PriceCurrency:  rec.PriceCurrency,
		SeasonCount:    rec.SeasonCount,
		EpisodeCount:   rec.EpisodeCount,
	}
}

// audit records a run outside the data transaction: a failed audit write
// must not undo a successful sync.
func (s *Syncer) audit(ctx context.Context, run *store.SyncRun) {
	if err := s.store.SyncRuns().Record(ctx, run); err != nil {
		slog.Warn("failed to record sync run", "run_id", run.ID, "error", err)
	}
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func errText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
