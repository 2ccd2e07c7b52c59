package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Overlay holds everything user-specific about one media row. Exactly zero
// or one overlay exists per (media, user) pair; it is created lazily on the
// first interaction, never pre-seeded for every user.
type Overlay struct {
	ID            int64
	MediaID       int64
	UserID        int64
	Status        string
	Score         *float64
	Progress      int
	ProgressTotal int
	Favorite      bool
	Hidden        bool
	Labels        *string
	CompletionTag string
	ManualTag     bool
	StartDate     string
	EndDate       string
	UpdatedAt     string
}

// OverlayRepo reads and writes overlay rows.
type OverlayRepo struct {
	q Querier
}

// NewOverlayRepo binds an overlay repository to a connection or transaction.
func NewOverlayRepo(q Querier) *OverlayRepo {
	return &OverlayRepo{q: q}
}

const overlayColumns = `id, media_id, user_id, status, score, progress,
	progress_total, favorite, hidden, labels, completion_tag, manual_tag,
	start_date, end_date, updated_at`

// Get fetches the overlay for one (media, user) pair, or nil when the user
// has never touched the row.
func (r *OverlayRepo) Get(ctx context.Context, mediaID, userID int64) (*Overlay, error) {
	row := r.q.QueryRowContext(ctx,
		"SELECT "+overlayColumns+" FROM overlays WHERE media_id = ? AND user_id = ?",
		mediaID, userID)

	var o Overlay
	err := row.Scan(&o.ID, &o.MediaID, &o.UserID, &o.Status, &o.Score, &o.Progress,
		&o.ProgressTotal, &o.Favorite, &o.Hidden, &o.Labels, &o.CompletionTag,
		&o.ManualTag, &o.StartDate, &o.EndDate, &o.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan overlay: %w", err)
	}
	return &o, nil
}

// Ensure creates the overlay row for (media, user) if it does not exist.
// Calling it twice is a no-op the second time.
func (r *OverlayRepo) Ensure(ctx context.Context, mediaID, userID int64) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO overlays (media_id, user_id)
		VALUES (?, ?)
		ON CONFLICT (media_id, user_id) DO NOTHING`,
		mediaID, userID)
	if err != nil {
		return fmt.Errorf("failed to ensure overlay: %w", err)
	}
	return nil
}

// Save rewrites every mutable column of an existing overlay row.
func (r *OverlayRepo) Save(ctx context.Context, o *Overlay) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE overlays SET
			status = ?, score = ?, progress = ?, progress_total = ?,
			favorite = ?, hidden = ?, labels = ?, completion_tag = ?,
			manual_tag = ?, start_date = ?, end_date = ?,
			updated_at = datetime('now')
		WHERE media_id = ? AND user_id = ?`,
		o.Status, o.Score, o.Progress, o.ProgressTotal,
		o.Favorite, o.Hidden, o.Labels, o.CompletionTag,
		o.ManualTag, o.StartDate, o.EndDate,
		o.MediaID, o.UserID)
	if err != nil {
		return fmt.Errorf("failed to save overlay: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("overlay row missing for media %d user %d", o.MediaID, o.UserID)
	}
	return nil
}
