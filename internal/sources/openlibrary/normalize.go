package openlibrary

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/medialibre/mediatheque/internal/canonical"
	"github.com/spf13/cast"
)

func normalizeDoc(doc searchDoc) canonical.Record {
	rec := canonical.Record{
		ExternalID:     strings.TrimPrefix(doc.Key, "/works/"),
		SourceName:     canonical.SourceOpenLibrary,
		Title:          doc.Title,
		Subtitle:       doc.Subtitle,
		Authors:        canonical.DedupeStrings(doc.AuthorName),
		Genres:         canonical.DedupeStrings(doc.Subject),
		CommunityScore: doc.RatingsAverage,
		CommunityVotes: doc.RatingsCount,
	}

	if doc.FirstPublishYear > 0 {
		rec.ReleaseDate = canonical.NormalizeDate(strconv.Itoa(doc.FirstPublishYear))
	}
	if len(doc.Publisher) > 0 {
		rec.Publisher = doc.Publisher[0]
	}
	if len(doc.Language) > 0 {
		rec.LanguageCode = doc.Language[0]
	}

	for _, raw := range doc.ISBN {
		i10, i13 := canonical.ClassifyISBN(raw)
		if rec.ISBN10 == "" && i10 != "" {
			rec.ISBN10 = i10
		}
		if rec.ISBN13 == "" && i13 != "" {
			rec.ISBN13 = i13
		}
		if rec.ISBN10 != "" && rec.ISBN13 != "" {
			break
		}
	}

	rec.CoverURL = CoverImageURL(doc.CoverID)
	if doc.Key != "" {
		rec.DetailURL = "https://openlibrary.org" + doc.Key
	}
	return rec
}

func normalizeEdition(edition editionPayload, requestedISBN string) canonical.Record {
	rec := canonical.Record{
		ExternalID:  strings.TrimPrefix(edition.Key, "/books/"),
		SourceName:  canonical.SourceOpenLibrary,
		Title:       edition.Title,
		Subtitle:    edition.Subtitle,
		ReleaseDate: canonical.NormalizeDate(edition.PublishDate),
		PageCount:   edition.NumberOfPages,
		Synopsis:    descriptionText(edition.Description),
	}

	if len(edition.Publishers) > 0 {
		rec.Publisher = edition.Publishers[0]
	}
	if len(edition.ISBN10) > 0 {
		rec.ISBN10 = canonical.NormalizeISBN(edition.ISBN10[0])
	}
	if len(edition.ISBN13) > 0 {
		rec.ISBN13 = canonical.NormalizeISBN(edition.ISBN13[0])
	}
	if rec.ISBN10 == "" && rec.ISBN13 == "" {
		i10, i13 := canonical.ClassifyISBN(requestedISBN)
		rec.ISBN10, rec.ISBN13 = i10, i13
	}
	if len(edition.Covers) > 0 {
		rec.CoverURL = CoverImageURL(edition.Covers[0])
	}
	if edition.Key != "" {
		rec.DetailURL = "https://openlibrary.org" + edition.Key
	}
	return rec
}

func normalizeWork(work workPayload) canonical.Record {
	rec := canonical.Record{
		ExternalID:  strings.TrimPrefix(work.Key, "/works/"),
		SourceName:  canonical.SourceOpenLibrary,
		Title:       work.Title,
		ReleaseDate: canonical.NormalizeDate(work.FirstPublishDate),
		Genres:      canonical.DedupeStrings(work.Subjects),
		Synopsis:    descriptionText(work.Description),
	}
	if len(work.Covers) > 0 {
		rec.CoverURL = CoverImageURL(work.Covers[0])
	}
	if work.Key != "" {
		rec.DetailURL = "https://openlibrary.org" + work.Key
	}
	return rec
}

// descriptionText flattens the edition description, tolerating both the
// plain-string and the {"type", "value"} object form.
func descriptionText(raw any) string {
	if obj, ok := raw.(map[string]any); ok {
		raw = obj["value"]
	}
	return strings.TrimSpace(cast.ToString(raw))
}

// CoverImageURL builds the large-variant cover URL for a cover id, or ""
// when no cover exists.
func CoverImageURL(coverID int) string {
	if coverID <= 0 {
		return ""
	}
	return fmt.Sprintf("%s/b/id/%d-L.jpg", coversBaseURL, coverID)
}
