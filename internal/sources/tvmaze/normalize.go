package tvmaze

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/medialibre/mediatheque/internal/canonical"
)

type searchResult struct {
	Score float64 `json:"score"`
	Show  Show    `json:"show"`
}

// Show is the TV Maze show payload. Seasons and episodes only appear when
// the request embedded them.
type Show struct {
	ID           int      `json:"id"`
	URL          string   `json:"url"`
	Name         string   `json:"name"`
	Language     string   `json:"language"`
	Genres       []string `json:"genres"`
	Status       string   `json:"status"`
	Premiered    string   `json:"premiered"`
	OfficialSite string   `json:"officialSite"`
	Rating       Rating   `json:"rating"`
	Network      *Network `json:"network"`
	WebChannel   *Network `json:"webChannel"`
	Image        *Image   `json:"image"`
	Summary      string   `json:"summary"`
	Externals    struct {
		IMDB    string `json:"imdb"`
		TheTVDB int    `json:"thetvdb"`
	} `json:"externals"`
	Embedded struct {
		Seasons  []Season  `json:"seasons"`
		Episodes []Episode `json:"episodes"`
	} `json:"_embedded"`
}

// Rating wraps the community average, which is null for unrated shows.
type Rating struct {
	Average *float64 `json:"average"`
}

// Network is a broadcast network or streaming channel.
type Network struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Image holds the medium and original poster variants.
type Image struct {
	Medium   string `json:"medium"`
	Original string `json:"original"`
}

// Season is one season entry from the embedded seasons list.
type Season struct {
	ID           int    `json:"id"`
	Number       int    `json:"number"`
	Name         string `json:"name"`
	EpisodeOrder int    `json:"episodeOrder"`
	PremiereDate string `json:"premiereDate"`
	EndDate      string `json:"endDate"`
	Summary      string `json:"summary"`
	Image        *Image `json:"image"`
}

// Episode is one episode entry from the embedded episodes list.
type Episode struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Season  int    `json:"season"`
	Number  int    `json:"number"`
	Airdate string `json:"airdate"`
	Runtime int    `json:"runtime"`
	Rating  Rating `json:"rating"`
	Summary string `json:"summary"`
	Image   *Image `json:"image"`
}

var htmlTagRe = regexp.MustCompile(`<[^>]+>`)

// StripHTML removes markup tags from a summary. TV Maze wraps every
// summary in <p> and sprinkles <b>/<i> through them.
func StripHTML(s string) string {
	return strings.TrimSpace(htmlTagRe.ReplaceAllString(s, ""))
}

// NormalizeShow maps a show payload onto the canonical shape.
func NormalizeShow(show Show) canonical.Record {
	rec := canonical.Record{
		ExternalID:   strconv.Itoa(show.ID),
		SourceName:   canonical.SourceTVMaze,
		Title:        show.Name,
		Synopsis:     StripHTML(show.Summary),
		ReleaseDate:  canonical.NormalizeDate(show.Premiered),
		LanguageCode: languageCode(show.Language),
		Genres:       canonical.DedupeStrings(show.Genres),
		DetailURL:    show.URL,
	}
	if show.Rating.Average != nil {
		rec.CommunityScore = *show.Rating.Average
	}
	if show.Network != nil {
		rec.Publisher = show.Network.Name
	} else if show.WebChannel != nil {
		rec.Publisher = show.WebChannel.Name
	}
	if show.Image != nil {
		if show.Image.Original != "" {
			rec.CoverURL = show.Image.Original
		} else {
			rec.CoverURL = show.Image.Medium
		}
	}
	for _, season := range show.Embedded.Seasons {
		if season.Number >= 0 {
			rec.SeasonCount++
		}
	}
	rec.EpisodeCount = len(show.Embedded.Episodes)
	return rec
}

// languageCode maps TV Maze's English language names to ISO codes for the
// handful of languages the library cares about, passing the rest through.
func languageCode(name string) string {
	switch strings.ToLower(name) {
	case "english":
		return "en"
	case "french":
		return "fr"
	case "japanese":
		return "ja"
	case "korean":
		return "ko"
	case "spanish":
		return "es"
	case "german":
		return "de"
	case "italian":
		return "it"
	case "":
		return ""
	}
	return name
}
