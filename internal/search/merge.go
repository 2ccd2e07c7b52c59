package search

import (
	"github.com/medialibre/mediatheque/internal/canonical"
)

// Merge deduplicates records that arrive ordered by source priority. The
// equivalence chain, first match wins: same (externalID, source) pair, then
// same preferred ISBN (13 over 10), then same normalized title. Once a slot
// is claimed by one source a later duplicate never overwrites it.
// filter, when non-nil, gates which records enter the board at all.
func Merge(records []canonical.Record, filter func(canonical.Record) bool) []canonical.Record {
	seenKey := make(map[string]bool)
	seenISBN := make(map[string]bool)
	seenTitle := make(map[string]bool)

	var merged []canonical.Record
	for _, rec := range records {
		if filter != nil && !filter(rec) {
			continue
		}
		// A missing external id carries no identity: two id-less records
		// from the same source must not collapse into one slot.
		if rec.ExternalID != "" && seenKey[rec.Key()] {
			continue
		}
		isbn := rec.BestISBN()
		if isbn != "" && seenISBN[isbn] {
			continue
		}
		title := canonical.NormalizeTitle(rec.Title)
		if title != "" && seenTitle[title] {
			continue
		}

		if rec.ExternalID != "" {
			seenKey[rec.Key()] = true
		}
		if isbn != "" {
			seenISBN[isbn] = true
		}
		if title != "" {
			seenTitle[title] = true
		}
		merged = append(merged, rec)
	}
	return merged
}
