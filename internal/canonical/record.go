// Package canonical defines the source-agnostic representation of one
// external catalog item and the normalization helpers shared by every source.
package canonical

// Source identifies the external catalog a record came from.
type Source string

const (
	SourceGoogleBooks Source = "google_books"
	SourceOpenLibrary Source = "open_library"
	SourceBNF         Source = "bnf"
	SourceTMDB        Source = "tmdb"
	SourceTVMaze      Source = "tvmaze"
)

// Domain is the media domain a search or import targets. An item can
// legitimately classify into more than one domain.
type Domain string

const (
	DomainBook  Domain = "book"
	DomainBD    Domain = "bd"
	DomainComic Domain = "comic"
	DomainManga Domain = "manga"
	DomainMovie Domain = "movie"
	DomainTV    Domain = "tv"
)

// Record is the normalized shape produced by every source mapper.
// Every field is independently optional; an absent field never invalidates
// the record. Records are transient: built per API response item, merged,
// then discarded after an upsert.
type Record struct {
	ExternalID        string   `json:"external_id"`
	SourceName        Source   `json:"source_name"`
	Title             string   `json:"title"`
	OriginalTitle     string   `json:"original_title,omitempty"`
	Subtitle          string   `json:"subtitle,omitempty"`
	Authors           []string `json:"authors,omitempty"`
	Publisher         string   `json:"publisher,omitempty"`
	ReleaseDate       string   `json:"release_date,omitempty"`
	LanguageCode      string   `json:"language_code,omitempty"`
	Synopsis          string   `json:"synopsis,omitempty"`
	Genres            []string `json:"genres,omitempty"`
	ISBN10            string   `json:"isbn10,omitempty"`
	ISBN13            string   `json:"isbn13,omitempty"`
	CoverURL          string   `json:"cover_url,omitempty"`
	DetailURL         string   `json:"detail_url,omitempty"`
	PageCount         int      `json:"page_count,omitempty"`
	CommunityScore    float64  `json:"community_score,omitempty"`
	CommunityVotes    int      `json:"community_votes,omitempty"`
	Price             *float64 `json:"price,omitempty"`
	PriceCurrency     string   `json:"price_currency,omitempty"`
	SeasonCount       int      `json:"season_count,omitempty"`
	EpisodeCount      int      `json:"episode_count,omitempty"`

	// InLibrary is filled by the merger against the local store, never by a
	// source mapper.
	InLibrary bool `json:"in_library"`
}

// BestISBN returns the preferred ISBN for equivalence checks: 13 over 10.
func (r *Record) BestISBN() string {
	if r.ISBN13 != "" {
		return r.ISBN13
	}
	return r.ISBN10
}

// Key returns the (externalID, source) pair that identifies a record.
func (r *Record) Key() string {
	return string(r.SourceName) + ":" + r.ExternalID
}
