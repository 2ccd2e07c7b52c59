package store

import (
	"context"
	"fmt"
)

// SyncRun is one audit row written per sync attempt, keyed by a uuid so log
// lines and database rows correlate.
type SyncRun struct {
	ID             string
	SourceName     string
	ExternalID     string
	LocalID        int64
	Created        bool
	SynopsisSource string
	Error          string
	StartedAt      string
	FinishedAt     string
}

// SyncRunRepo writes and lists sync audit rows.
type SyncRunRepo struct {
	q Querier
}

// NewSyncRunRepo binds a sync-run repository to a connection or transaction.
func NewSyncRunRepo(q Querier) *SyncRunRepo {
	return &SyncRunRepo{q: q}
}

// Record inserts one finished run.
func (r *SyncRunRepo) Record(ctx context.Context, run *SyncRun) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO sync_runs (id, source_name, external_id, local_id, created, synopsis_source, error, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.SourceName, run.ExternalID, run.LocalID, run.Created,
		run.SynopsisSource, run.Error, run.StartedAt, run.FinishedAt)
	if err != nil {
		return fmt.Errorf("failed to record sync run: %w", err)
	}
	return nil
}

// ListRecent returns the latest runs, newest first.
func (r *SyncRunRepo) ListRecent(ctx context.Context, limit int) ([]SyncRun, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, source_name, external_id, local_id, created, synopsis_source, error, started_at, finished_at
		FROM sync_runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list sync runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []SyncRun
	for rows.Next() {
		var run SyncRun
		if err := rows.Scan(&run.ID, &run.SourceName, &run.ExternalID, &run.LocalID,
			&run.Created, &run.SynopsisSource, &run.Error, &run.StartedAt, &run.FinishedAt); err != nil {
			return nil, fmt.Errorf("failed to scan sync run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
