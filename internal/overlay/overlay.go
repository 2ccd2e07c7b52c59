// Package overlay manages the per-(media, user) rows holding everything
// user-specific: status, score, progress, favorite/hidden flags and labels.
// The shared media row is read-only from here; user facts never leak into
// it. The acting user is always an explicit argument.
package overlay

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/medialibre/mediatheque/internal/store"
)

// Completion tags derived from progress.
const (
	TagToRead     = "to-read"
	TagInProgress = "in-progress"
	TagCompleted  = "completed"
)

// Result reports a mutation outcome. A missing user or media row is a
// caller-facing condition, not a Go error.
type Result struct {
	Success bool
	Error   string
}

// Patch carries a partial overlay update; only non-nil fields are applied.
type Patch struct {
	Status        *string
	Score         *float64
	Progress      *int
	ProgressTotal *int
	Labels        []string
	StartDate     *string
	EndDate       *string
	ManualTag     *bool
	CompletionTag *string
}

// Manager mutates overlay rows.
type Manager struct {
	store *store.Store
}

// NewManager builds an overlay manager over the library store.
func NewManager(s *store.Store) *Manager {
	return &Manager{store: s}
}

// EnsureRow lazily creates the overlay for (media, user). Calling it again
// is a no-op. A zero id is a programmer error; an unknown id is a Result.
func (m *Manager) EnsureRow(ctx context.Context, mediaID, userID int64) (Result, error) {
	if mediaID == 0 || userID == 0 {
		return Result{}, fmt.Errorf("media and user ids are required")
	}

	if res, err := m.check(ctx, mediaID, userID); err != nil || !res.Success {
		return res, err
	}
	if err := m.store.Overlays().Ensure(ctx, mediaID, userID); err != nil {
		return Result{}, err
	}
	return Result{Success: true}, nil
}

// Update applies a partial patch. The completion tag is re-derived from the
// patched progress unless the row carries a manual override.
func (m *Manager) Update(ctx context.Context, mediaID, userID int64, patch Patch) (Result, error) {
	if mediaID == 0 || userID == 0 {
		return Result{}, fmt.Errorf("media and user ids are required")
	}

	var res Result
	err := m.store.InTx(ctx, func(tx *sql.Tx) error {
		var err error
		res, err = m.applyPatch(ctx, tx, mediaID, userID, patch)
		return err
	})
	return res, err
}

func (m *Manager) applyPatch(ctx context.Context, tx *sql.Tx, mediaID, userID int64, patch Patch) (Result, error) {
	if res, err := m.check(ctx, mediaID, userID); err != nil || !res.Success {
		return res, err
	}

	repo := store.NewOverlayRepo(tx)
	if err := repo.Ensure(ctx, mediaID, userID); err != nil {
		return Result{}, err
	}
	o, err := repo.Get(ctx, mediaID, userID)
	if err != nil {
		return Result{}, err
	}

	if patch.Status != nil {
		o.Status = *patch.Status
	}
	if patch.Score != nil {
		o.Score = patch.Score
	}
	if patch.Progress != nil {
		o.Progress = *patch.Progress
	}
	if patch.ProgressTotal != nil {
		o.ProgressTotal = *patch.ProgressTotal
	}
	if patch.Labels != nil {
		encoded, err := json.Marshal(patch.Labels)
		if err == nil {
			s := string(encoded)
			o.Labels = &s
		}
	}
	if patch.StartDate != nil {
		o.StartDate = *patch.StartDate
	}
	if patch.EndDate != nil {
		o.EndDate = *patch.EndDate
	}
	if patch.ManualTag != nil {
		o.ManualTag = *patch.ManualTag
	}
	if patch.CompletionTag != nil {
		o.CompletionTag = *patch.CompletionTag
		o.ManualTag = true
	}

	if !o.ManualTag {
		o.CompletionTag = DeriveCompletionTag(o.Progress, o.ProgressTotal)
	}

	if err := repo.Save(ctx, o); err != nil {
		return Result{}, err
	}
	return Result{Success: true}, nil
}

// ToggleFavorite flips the favorite flag in one transaction and returns the
// new value.
func (m *Manager) ToggleFavorite(ctx context.Context, mediaID, userID int64) (bool, Result, error) {
	return m.toggle(ctx, mediaID, userID, func(o *store.Overlay) *bool {
		o.Favorite = !o.Favorite
		return &o.Favorite
	})
}

// ToggleHidden flips the hidden flag in one transaction and returns the new
// value.
func (m *Manager) ToggleHidden(ctx context.Context, mediaID, userID int64) (bool, Result, error) {
	return m.toggle(ctx, mediaID, userID, func(o *store.Overlay) *bool {
		o.Hidden = !o.Hidden
		return &o.Hidden
	})
}

func (m *Manager) toggle(ctx context.Context, mediaID, userID int64, flip func(*store.Overlay) *bool) (bool, Result, error) {
	if mediaID == 0 || userID == 0 {
		return false, Result{}, fmt.Errorf("media and user ids are required")
	}

	var newValue bool
	var res Result
	err := m.store.InTx(ctx, func(tx *sql.Tx) error {
		var err error
		if res, err = m.check(ctx, mediaID, userID); err != nil || !res.Success {
			return err
		}
		repo := store.NewOverlayRepo(tx)
		if err := repo.Ensure(ctx, mediaID, userID); err != nil {
			return err
		}
		o, err := repo.Get(ctx, mediaID, userID)
		if err != nil {
			return err
		}
		newValue = *flip(o)
		return repo.Save(ctx, o)
	})
	return newValue, res, err
}

// SetStatus ensures the row then writes status, score and dates together.
func (m *Manager) SetStatus(ctx context.Context, mediaID, userID int64, status string, score *float64, startDate, endDate string) (Result, error) {
	patch := Patch{Status: &status, Score: score}
	if startDate != "" {
		patch.StartDate = &startDate
	}
	if endDate != "" {
		patch.EndDate = &endDate
	}
	return m.Update(ctx, mediaID, userID, patch)
}

// SetProgress updates the progress counters; the completion tag follows
// unless manually overridden.
func (m *Manager) SetProgress(ctx context.Context, mediaID, userID int64, progress, total int) (Result, error) {
	patch := Patch{Progress: &progress}
	if total > 0 {
		patch.ProgressTotal = &total
	}
	return m.Update(ctx, mediaID, userID, patch)
}

// DeriveCompletionTag classifies raw progress. With no known total any
// positive progress counts as in progress.
func DeriveCompletionTag(progress, total int) string {
	switch {
	case progress <= 0:
		return TagToRead
	case total > 0 && progress >= total:
		return TagCompleted
	default:
		return TagInProgress
	}
}

// check verifies both referenced rows exist before any write.
func (m *Manager) check(ctx context.Context, mediaID, userID int64) (Result, error) {
	media, err := m.store.Media().GetByID(ctx, mediaID)
	if err != nil {
		return Result{}, err
	}
	if media == nil {
		return Result{Error: fmt.Sprintf("media %d not found", mediaID)}, nil
	}
	user, err := m.store.Users().GetByID(ctx, userID)
	if err != nil {
		return Result{}, err
	}
	if user == nil {
		return Result{Error: fmt.Sprintf("user %d not found", userID)}, nil
	}
	return Result{Success: true}, nil
}
