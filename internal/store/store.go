// Package store owns the media library SQLite database: schema, transaction
// helper and typed repositories. Repositories form a closed set; no SQL
// identifier is ever built from caller input.
package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Querier is the subset of database/sql shared by *sql.DB and *sql.Tx, so
// repositories run unchanged inside or outside a transaction.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store wraps the library database.
type Store struct {
	db     *sql.DB
	dbPath string
}

// Open opens (creating if needed) the library database and ensures the
// schema exists. Foreign keys are enforced for the whole connection.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	for _, schema := range allSchemas {
		if _, err := db.Exec(schema); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return &Store{db: db, dbPath: dbPath}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the raw handle for repositories running outside a transaction.
func (s *Store) DB() *sql.DB {
	return s.db
}

// InTx runs fn inside a transaction, committing on nil and rolling back on
// error or panic.
func (s *Store) InTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		// no-op when already committed
		_ = tx.Rollback()
	}()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Media returns a media repository bound to the plain connection.
func (s *Store) Media() *MediaRepo { return NewMediaRepo(s.db) }

// Seasons returns a season repository bound to the plain connection.
func (s *Store) Seasons() *SeasonRepo { return NewSeasonRepo(s.db) }

// Episodes returns an episode repository bound to the plain connection.
func (s *Store) Episodes() *EpisodeRepo { return NewEpisodeRepo(s.db) }

// Overlays returns an overlay repository bound to the plain connection.
func (s *Store) Overlays() *OverlayRepo { return NewOverlayRepo(s.db) }

// Ownership returns an ownership repository bound to the plain connection.
func (s *Store) Ownership() *OwnershipRepo { return NewOwnershipRepo(s.db) }

// SyncRuns returns a sync-run repository bound to the plain connection.
func (s *Store) SyncRuns() *SyncRunRepo { return NewSyncRunRepo(s.db) }

// Users returns a user repository bound to the plain connection.
func (s *Store) Users() *UserRepo { return NewUserRepo(s.db) }
