package googlebooks

import (
	"fmt"
	"strings"

	"github.com/medialibre/mediatheque/internal/canonical"
)

const booksHost = "https://books.google.com"

// Normalize maps a Google Books volume onto the canonical record shape.
func Normalize(v Volume) canonical.Record {
	info := v.VolumeInfo

	rec := canonical.Record{
		ExternalID:     v.ID,
		SourceName:     canonical.SourceGoogleBooks,
		Title:          info.Title,
		Subtitle:       info.Subtitle,
		Authors:        canonical.DedupeStrings(info.Authors),
		Publisher:      info.Publisher,
		ReleaseDate:    canonical.NormalizeDate(info.PublishedDate),
		LanguageCode:   info.Language,
		Synopsis:       info.Description,
		Genres:         FlattenCategories(info.Categories),
		CoverURL:       CoverURL(info.ImageLinks, v.ID),
		PageCount:      info.PageCount,
		CommunityScore: info.AverageRating,
		CommunityVotes: info.RatingsCount,
	}

	for _, ident := range info.IndustryIdentifiers {
		switch ident.Type {
		case "ISBN_10":
			rec.ISBN10 = canonical.NormalizeISBN(ident.Identifier)
		case "ISBN_13":
			rec.ISBN13 = canonical.NormalizeISBN(ident.Identifier)
		}
	}

	rec.DetailURL = info.CanonicalVolumeLink
	if rec.DetailURL == "" {
		rec.DetailURL = info.InfoLink
	}

	if price, currency := ExtractPrice(v.SaleInfo); price != nil {
		rec.Price = price
		rec.PriceCurrency = currency
	}

	return rec
}

// CoverURL picks the highest-quality image variant and normalizes it. When
// no variant exists but the volume id is known, a content-delivery URL is
// synthesized from the id.
func CoverURL(links ImageLinks, volumeID string) string {
	// quality order: large > medium > thumbnail > smallThumbnail
	for _, candidate := range []string{links.Large, links.Medium, links.Thumbnail, links.SmallThumbnail} {
		if candidate != "" {
			return NormalizeCoverURL(candidate)
		}
	}
	if volumeID != "" {
		return fmt.Sprintf("%s/books/content?id=%s&printsec=frontcover&img=1&zoom=0", booksHost, volumeID)
	}
	return ""
}

// NormalizeCoverURL rewrites a Google Books image link to its best https
// form: protocol-relative and root-relative URLs are anchored, http is
// upgraded, the edge=curl decoration is dropped and zoom is forced to 0.
// Normalizing an already-normalized URL returns it unchanged.
func NormalizeCoverURL(raw string) string {
	if raw == "" {
		return ""
	}

	u := raw
	switch {
	case strings.HasPrefix(u, "//"):
		u = "https:" + u
	case strings.HasPrefix(u, "/"):
		u = booksHost + u
	case strings.HasPrefix(u, "http://"):
		u = "https://" + strings.TrimPrefix(u, "http://")
	}

	u = strings.ReplaceAll(u, "&edge=curl", "")
	u = strings.ReplaceAll(u, "edge=curl&", "")
	u = strings.TrimSuffix(u, "?edge=curl")

	if idx := strings.Index(u, "zoom="); idx >= 0 {
		end := idx + len("zoom=")
		for end < len(u) && u[end] != '&' {
			end++
		}
		u = u[:idx] + "zoom=0" + u[end:]
	}

	return u
}

// FlattenCategories splits hierarchical "/"-delimited categories into a
// deduplicated flat list. The generic "Fiction" segment is dropped whenever
// the category string carried a more specific segment alongside it.
func FlattenCategories(categories []string) []string {
	seen := make(map[string]bool)
	var out []string

	for _, category := range categories {
		segments := strings.Split(category, "/")
		multi := len(segments) > 1
		for _, segment := range segments {
			segment = strings.TrimSpace(segment)
			if segment == "" {
				continue
			}
			if multi && strings.EqualFold(segment, "fiction") {
				continue
			}
			if !seen[strings.ToLower(segment)] {
				seen[strings.ToLower(segment)] = true
				out = append(out, segment)
			}
		}
	}
	return out
}

// ExtractPrice prefers listPrice over retailPrice; both absent means no
// price at all.
func ExtractPrice(sale SaleInfo) (*float64, string) {
	if sale.ListPrice != nil && sale.ListPrice.Amount > 0 {
		amount := sale.ListPrice.Amount
		return &amount, sale.ListPrice.CurrencyCode
	}
	if sale.RetailPrice != nil && sale.RetailPrice.Amount > 0 {
		amount := sale.RetailPrice.Amount
		return &amount, sale.RetailPrice.CurrencyCode
	}
	return nil, ""
}
