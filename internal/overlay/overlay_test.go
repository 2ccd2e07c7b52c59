package overlay

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medialibre/mediatheque/internal/store"
)

func setup(t *testing.T) (*Manager, *store.Store, int64, int64) {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "library.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	ctx := context.Background()
	user, err := s.Users().Ensure(ctx, "alice")
	require.NoError(t, err)
	mediaID, _, err := s.Media().Upsert(ctx, &store.Media{
		SourceID: "550", SourceName: "tmdb", Domain: "movie", Title: "Fight Club",
	})
	require.NoError(t, err)

	return NewManager(s), s, mediaID, user.ID
}

func TestEnsureRowIsLazyAndIdempotent(t *testing.T) {
	m, s, mediaID, userID := setup(t)
	ctx := context.Background()

	res, err := m.EnsureRow(ctx, mediaID, userID)
	require.NoError(t, err)
	assert.True(t, res.Success)

	res, err = m.EnsureRow(ctx, mediaID, userID)
	require.NoError(t, err)
	assert.True(t, res.Success)

	o, err := s.Overlays().Get(ctx, mediaID, userID)
	require.NoError(t, err)
	require.NotNil(t, o)
}

func TestEnsureRowUnknownMedia(t *testing.T) {
	m, _, _, userID := setup(t)

	res, err := m.EnsureRow(context.Background(), 9999, userID)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "not found")
}

func TestEnsureRowZeroIDIsError(t *testing.T) {
	m, _, mediaID, _ := setup(t)

	_, err := m.EnsureRow(context.Background(), mediaID, 0)
	require.Error(t, err)
}

func TestUpdateAppliesOnlySetFields(t *testing.T) {
	m, s, mediaID, userID := setup(t)
	ctx := context.Background()

	status := "reading"
	score := 8.5
	res, err := m.Update(ctx, mediaID, userID, Patch{Status: &status, Score: &score})
	require.NoError(t, err)
	assert.True(t, res.Success)

	progress := 3
	res, err = m.Update(ctx, mediaID, userID, Patch{Progress: &progress})
	require.NoError(t, err)
	assert.True(t, res.Success)

	o, err := s.Overlays().Get(ctx, mediaID, userID)
	require.NoError(t, err)
	// the untouched fields keep their earlier values
	assert.Equal(t, "reading", o.Status)
	require.NotNil(t, o.Score)
	assert.Equal(t, 8.5, *o.Score)
	assert.Equal(t, 3, o.Progress)
}

func TestProgressDerivesCompletionTag(t *testing.T) {
	m, s, mediaID, userID := setup(t)
	ctx := context.Background()

	_, err := m.SetProgress(ctx, mediaID, userID, 0, 12)
	require.NoError(t, err)
	o, err := s.Overlays().Get(ctx, mediaID, userID)
	require.NoError(t, err)
	assert.Equal(t, TagToRead, o.CompletionTag)

	_, err = m.SetProgress(ctx, mediaID, userID, 5, 12)
	require.NoError(t, err)
	o, _ = s.Overlays().Get(ctx, mediaID, userID)
	assert.Equal(t, TagInProgress, o.CompletionTag)

	_, err = m.SetProgress(ctx, mediaID, userID, 12, 12)
	require.NoError(t, err)
	o, _ = s.Overlays().Get(ctx, mediaID, userID)
	assert.Equal(t, TagCompleted, o.CompletionTag)
}

func TestManualTagSurvivesProgressUpdates(t *testing.T) {
	m, s, mediaID, userID := setup(t)
	ctx := context.Background()

	tag := "abandoned"
	res, err := m.Update(ctx, mediaID, userID, Patch{CompletionTag: &tag})
	require.NoError(t, err)
	assert.True(t, res.Success)

	// later progress writes must not clobber the user's tag
	_, err = m.SetProgress(ctx, mediaID, userID, 12, 12)
	require.NoError(t, err)

	o, err := s.Overlays().Get(ctx, mediaID, userID)
	require.NoError(t, err)
	assert.Equal(t, "abandoned", o.CompletionTag)
	assert.True(t, o.ManualTag)
}

func TestToggleFavoriteFlips(t *testing.T) {
	m, _, mediaID, userID := setup(t)
	ctx := context.Background()

	on, res, err := m.ToggleFavorite(ctx, mediaID, userID)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.True(t, on)

	off, _, err := m.ToggleFavorite(ctx, mediaID, userID)
	require.NoError(t, err)
	assert.False(t, off)
}

func TestToggleHiddenFlips(t *testing.T) {
	m, _, mediaID, userID := setup(t)
	ctx := context.Background()

	on, _, err := m.ToggleHidden(ctx, mediaID, userID)
	require.NoError(t, err)
	assert.True(t, on)
}

func TestSetStatusWritesRow(t *testing.T) {
	m, s, mediaID, userID := setup(t)
	ctx := context.Background()

	score := 9.0
	res, err := m.SetStatus(ctx, mediaID, userID, "completed", &score, "2026-01-02", "2026-02-10")
	require.NoError(t, err)
	assert.True(t, res.Success)

	o, err := s.Overlays().Get(ctx, mediaID, userID)
	require.NoError(t, err)
	assert.Equal(t, "completed", o.Status)
	assert.Equal(t, "2026-01-02", o.StartDate)
	assert.Equal(t, "2026-02-10", o.EndDate)
}

func TestDeriveCompletionTag(t *testing.T) {
	assert.Equal(t, TagToRead, DeriveCompletionTag(0, 10))
	assert.Equal(t, TagToRead, DeriveCompletionTag(-1, 0))
	assert.Equal(t, TagInProgress, DeriveCompletionTag(3, 10))
	assert.Equal(t, TagInProgress, DeriveCompletionTag(3, 0))
	assert.Equal(t, TagCompleted, DeriveCompletionTag(10, 10))
	assert.Equal(t, TagCompleted, DeriveCompletionTag(12, 10))
}
