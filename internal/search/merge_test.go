package search

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/medialibre/mediatheque/internal/canonical"
)

func TestMergeDedupBySourceKey(t *testing.T) {
	records := []canonical.Record{
		{ExternalID: "1", SourceName: canonical.SourceGoogleBooks, Title: "Dune"},
		{ExternalID: "1", SourceName: canonical.SourceGoogleBooks, Title: "Dune (duplicate)"},
	}
	merged := Merge(records, nil)
	assert.Len(t, merged, 1)
	assert.Equal(t, "Dune", merged[0].Title)
}

func TestMergeDedupByISBNAcrossSources(t *testing.T) {
	records := []canonical.Record{
		{ExternalID: "g1", SourceName: canonical.SourceGoogleBooks, Title: "Dune", ISBN13: "9780441172719"},
		{ExternalID: "ol1", SourceName: canonical.SourceOpenLibrary, Title: "Dune: another edition", ISBN13: "9780441172719"},
	}
	merged := Merge(records, nil)
	assert.Len(t, merged, 1)
	// the first source to claim the slot keeps it
	assert.Equal(t, canonical.SourceGoogleBooks, merged[0].SourceName)
}

func TestMergeDedupByNormalizedTitle(t *testing.T) {
	records := []canonical.Record{
		{ExternalID: "g1", SourceName: canonical.SourceGoogleBooks, Title: "  Dune "},
		{ExternalID: "ol1", SourceName: canonical.SourceOpenLibrary, Title: "dune"},
		{ExternalID: "ol2", SourceName: canonical.SourceOpenLibrary, Title: "Dune Messiah"},
	}
	merged := Merge(records, nil)
	assert.Len(t, merged, 2)
}

func TestMergePrefers13Over10(t *testing.T) {
	records := []canonical.Record{
		{ExternalID: "a", SourceName: canonical.SourceGoogleBooks, Title: "Dune A", ISBN10: "0441172717", ISBN13: "9780441172719"},
		{ExternalID: "b", SourceName: canonical.SourceOpenLibrary, Title: "Dune B", ISBN13: "9780441172719"},
		{ExternalID: "c", SourceName: canonical.SourceBNF, Title: "Dune C", ISBN10: "0441172717"},
	}
	merged := Merge(records, nil)
	// b collapses into a via ISBN-13; c survives on its lone ISBN-10 since
	// a's preferred identity was the 13 form
	assert.Len(t, merged, 2)
}

func TestMergeKeepsDistinctRecordsWithoutExternalID(t *testing.T) {
	// BNF records can lack a resolvable identifier entirely; they must not
	// collapse into one another on the empty-id key.
	records := []canonical.Record{
		{SourceName: canonical.SourceBNF, Title: "Les Cigares du pharaon"},
		{SourceName: canonical.SourceBNF, Title: "Le Lotus bleu"},
	}
	merged := Merge(records, nil)
	assert.Len(t, merged, 2)
}

func TestMergeStillDedupsIdLessRecordsByTitle(t *testing.T) {
	records := []canonical.Record{
		{SourceName: canonical.SourceBNF, Title: "Le Lotus bleu"},
		{SourceName: canonical.SourceBNF, Title: "le lotus bleu "},
	}
	merged := Merge(records, nil)
	assert.Len(t, merged, 1)
}

func TestMergeFilterGatesEntry(t *testing.T) {
	records := []canonical.Record{
		{ExternalID: "1", SourceName: canonical.SourceGoogleBooks, Title: "Astérix chez les Bretons", Publisher: "Dargaud"},
		{ExternalID: "2", SourceName: canonical.SourceGoogleBooks, Title: "Madame Bovary", Publisher: "Gallimard"},
	}
	merged := Merge(records, func(rec canonical.Record) bool {
		return rec.Publisher == "Dargaud"
	})
	assert.Len(t, merged, 1)
	assert.Equal(t, "1", merged[0].ExternalID)
}
