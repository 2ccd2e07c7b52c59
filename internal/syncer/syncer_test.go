package syncer

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medialibre/mediatheque/internal/canonical"
	"github.com/medialibre/mediatheque/internal/sources"
	"github.com/medialibre/mediatheque/internal/sources/tmdb"
	"github.com/medialibre/mediatheque/internal/store"
	"github.com/medialibre/mediatheque/internal/translate"
)

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "library.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

type fakeSource struct {
	name canonical.Source
	byID map[string]canonical.Record
}

func (f *fakeSource) Name() canonical.Source { return f.name }

func (f *fakeSource) Search(ctx context.Context, query string, opts sources.Options) ([]canonical.Record, error) {
	return nil, nil
}

func (f *fakeSource) GetByID(ctx context.Context, id string) (*canonical.Record, error) {
	rec, ok := f.byID[id]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func TestUpsertIdempotence(t *testing.T) {
	s := openTestStore(t)
	sync := New(s, nil, nil, "fr", "en")
	ctx := context.Background()

	rec := canonical.Record{
		ExternalID: "550",
		SourceName: canonical.SourceTMDB,
		Title:      "Fight Club",
		Genres:     []string{"Drama"},
	}

	id1, created1, err := sync.Upsert(ctx, rec, canonical.DomainMovie)
	require.NoError(t, err)
	assert.True(t, created1)

	id2, created2, err := sync.Upsert(ctx, rec, canonical.DomainMovie)
	require.NoError(t, err)
	assert.False(t, created2)
	assert.Equal(t, id1, id2)

	row, err := s.Media().GetByID(ctx, id1)
	require.NoError(t, err)
	assert.Equal(t, "Fight Club", row.Title)
	require.NotNil(t, row.Genres)
	assert.JSONEq(t, `["Drama"]`, *row.Genres)

	runs, err := s.SyncRuns().ListRecent(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
	assert.Equal(t, "550", runs[0].ExternalID)
}

func TestImportEnsuresOverlay(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	user, err := s.Users().Ensure(ctx, "alice")
	require.NoError(t, err)

	source := &fakeSource{
		name: canonical.SourceGoogleBooks,
		byID: map[string]canonical.Record{
			"vol1": {ExternalID: "vol1", SourceName: canonical.SourceGoogleBooks, Title: "Dune"},
		},
	}
	sync := New(s, []sources.Client{source}, nil, "fr", "en")

	result, err := sync.Import(ctx, "vol1", canonical.SourceGoogleBooks, canonical.DomainBook, user.ID)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.False(t, result.AlreadyExists)

	overlay, err := s.Overlays().Get(ctx, result.LocalID, user.ID)
	require.NoError(t, err)
	require.NotNil(t, overlay)

	// importing again reports the existing row
	again, err := sync.Import(ctx, "vol1", canonical.SourceGoogleBooks, canonical.DomainBook, user.ID)
	require.NoError(t, err)
	assert.True(t, again.AlreadyExists)
	assert.Equal(t, result.LocalID, again.LocalID)
}

func TestImportUnknownIDFails(t *testing.T) {
	s := openTestStore(t)
	source := &fakeSource{name: canonical.SourceGoogleBooks, byID: map[string]canonical.Record{}}
	sync := New(s, []sources.Client{source}, nil, "fr", "en")

	result, err := sync.Import(context.Background(), "missing", canonical.SourceGoogleBooks, canonical.DomainBook, 0)
	require.NoError(t, err)
	assert.False(t, result.Success)
}

func TestImportUnknownSourceErrors(t *testing.T) {
	s := openTestStore(t)
	sync := New(s, nil, nil, "fr", "en")

	_, err := sync.Import(context.Background(), "1", canonical.SourceTMDB, canonical.DomainMovie, 0)
	require.Error(t, err)
}

type fakeTMDB struct {
	movie   *tmdb.MovieDetails
	show    *tmdb.TVDetails
	seasons map[int]*tmdb.SeasonDetails
}

func (f *fakeTMDB) GetMovieDetails(ctx context.Context, movieID int) (*tmdb.MovieDetails, error) {
	return f.movie, nil
}

func (f *fakeTMDB) GetTVDetails(ctx context.Context, tvID int) (*tmdb.TVDetails, error) {
	return f.show, nil
}

func (f *fakeTMDB) GetSeason(ctx context.Context, tvID, seasonNumber int) (*tmdb.SeasonDetails, error) {
	season, ok := f.seasons[seasonNumber]
	if !ok {
		return nil, fmt.Errorf("unexpected season request %d", seasonNumber)
	}
	return season, nil
}

func TestSyncMovieStoresNestedJSON(t *testing.T) {
	s := openTestStore(t)
	sync := New(s, nil, nil, "fr", "en")
	ctx := context.Background()

	client := &fakeTMDB{movie: &tmdb.MovieDetails{
		ID:       550,
		Title:    "Fight Club",
		Overview: "Un employé de bureau insomniaque et un fabricant de savon fondent des clubs de combat clandestins.",
		Credits: tmdb.Credits{
			Cast: []tmdb.CastMember{{ID: 819, Name: "Edward Norton", Character: "The Narrator"}},
			Crew: []tmdb.CrewMember{{Name: "David Fincher", Job: "Director"}},
		},
		ExternalIDs: tmdb.ExternalIDs{IMDBID: "tt0137523"},
	}}

	localID, created, err := sync.SyncMovie(ctx, client, 550, "https://img.example")
	require.NoError(t, err)
	assert.True(t, created)

	row, err := s.Media().GetByID(ctx, localID)
	require.NoError(t, err)
	assert.Equal(t, "movie", row.Domain)
	assert.Equal(t, "tmdb", row.SynopsisSource)
	require.NotNil(t, row.Credits)
	assert.Contains(t, *row.Credits, "David Fincher")
	require.NotNil(t, row.ExternalIDs)
	assert.Contains(t, *row.ExternalIDs, "tt0137523")
	// absent payloads store as NULL, not empty JSON
	assert.Nil(t, row.Images)
	assert.Nil(t, row.Keywords)
	assert.Nil(t, row.Providers)
}

func TestSyncTVSkipsNegativeSeasons(t *testing.T) {
	s := openTestStore(t)
	sync := New(s, nil, nil, "fr", "en")
	ctx := context.Background()

	client := &fakeTMDB{
		show: &tmdb.TVDetails{
			ID:       1396,
			Name:     "Breaking Bad",
			Overview: "Un professeur de chimie atteint d'un cancer se lance dans la fabrication de méthamphétamine.",
			Seasons: []tmdb.SeasonSummary{
				{SeasonNumber: -1, Name: "Specials"},
				{SeasonNumber: 1, Name: "Season 1"},
			},
		},
		seasons: map[int]*tmdb.SeasonDetails{
			1: {
				SeasonNumber: 1,
				Name:         "Season 1",
				Episodes: []tmdb.Episode{
					{SeasonNumber: 1, EpisodeNumber: 1, Name: "Pilot", Runtime: 58},
					{SeasonNumber: 1, EpisodeNumber: 2, Name: "Cat's in the Bag..."},
				},
			},
		},
	}

	localID, _, err := sync.SyncTV(ctx, client, 1396, "https://img.example")
	require.NoError(t, err)

	seasons, err := s.Seasons().ListByShow(ctx, localID)
	require.NoError(t, err)
	require.Len(t, seasons, 1)
	assert.Equal(t, 1, seasons[0].SeasonNumber)

	episodes, err := s.Episodes().ListBySeason(ctx, localID, 1)
	require.NoError(t, err)
	assert.Len(t, episodes, 2)
}

type fakeTranslator struct {
	result translate.Result
	err    error
	called bool
	input  string
}

func (f *fakeTranslator) Translate(ctx context.Context, text, targetLang, domainHint string) (translate.Result, error) {
	f.called = true
	f.input = text
	return f.result, f.err
}

func TestEnrichKeepsLongOverview(t *testing.T) {
	tr := &fakeTranslator{}
	text, provenance := enrichSynopsis(context.Background(), tr,
		"A perfectly serviceable synopsis longer than the threshold.",
		tmdb.Translations{}, "fr", "en", "movie synopsis")
	assert.Equal(t, "tmdb", provenance)
	assert.Contains(t, text, "serviceable")
	assert.False(t, tr.called)
}

func TestEnrichPrefersTargetLanguageTranslation(t *testing.T) {
	translations := tmdb.Translations{Translations: []tmdb.Translation{
		{ISO639: "en", Data: tmdb.TranslationData{Overview: "An English overview long enough to qualify."}},
		{ISO639: "fr", Data: tmdb.TranslationData{Overview: "Un synopsis français suffisamment long pour compter."}},
	}}

	text, provenance := enrichSynopsis(context.Background(), nil, "court",
		translations, "fr", "en", "movie synopsis")
	assert.Equal(t, "tmdb_fr", provenance)
	assert.Contains(t, text, "français")
}

func TestEnrichFallsBackToFallbackLanguage(t *testing.T) {
	translations := tmdb.Translations{Translations: []tmdb.Translation{
		{ISO639: "en", Data: tmdb.TranslationData{Overview: "An English overview long enough to qualify."}},
	}}

	_, provenance := enrichSynopsis(context.Background(), nil, "court",
		translations, "fr", "en", "movie synopsis")
	assert.Equal(t, "tmdb_en", provenance)
}

func TestEnrichUsesTranslatorLast(t *testing.T) {
	tr := &fakeTranslator{result: translate.Result{Success: true, Text: "Un synopsis traduit."}}

	text, provenance := enrichSynopsis(context.Background(), tr,
		"A short one.", tmdb.Translations{}, "fr", "en", "movie synopsis")
	assert.Equal(t, "groq", provenance)
	assert.Equal(t, "Un synopsis traduit.", text)
	assert.Equal(t, "A short one.", tr.input)
}

func TestEnrichTooShortForTranslator(t *testing.T) {
	tr := &fakeTranslator{result: translate.Result{Success: true, Text: "ignoré"}}

	text, provenance := enrichSynopsis(context.Background(), tr,
		"tiny", tmdb.Translations{}, "fr", "en", "movie synopsis")
	assert.Equal(t, "tmdb", provenance)
	assert.Equal(t, "tiny", text)
	assert.False(t, tr.called)
}

func TestEnrichTranslatorSkipKeepsOriginal(t *testing.T) {
	// a translator without a credential reports an unsuccessful skip
	tr := &fakeTranslator{result: translate.Result{}}

	text, provenance := enrichSynopsis(context.Background(), tr,
		"A short one.", tmdb.Translations{}, "fr", "en", "movie synopsis")
	assert.Equal(t, "tmdb", provenance)
	assert.Equal(t, "A short one.", text)
	assert.True(t, tr.called)
}

func TestEncodeBoundaryNeverErrors(t *testing.T) {
	assert.Nil(t, encodeStrings(nil))
	assert.Nil(t, encodeCredits(tmdb.Credits{}))
	assert.Nil(t, encodeKeywords(tmdb.Keywords{}))
	assert.Nil(t, encodeExternalIDs(tmdb.ExternalIDs{}))
	assert.Nil(t, encodeProviders(tmdb.WatchProviders{}))
	assert.Nil(t, encodeTranslations(tmdb.Translations{}))

	got := encodeStrings([]string{"Drama", "Crime"})
	require.NotNil(t, got)
	assert.JSONEq(t, `["Drama","Crime"]`, *got)
}
