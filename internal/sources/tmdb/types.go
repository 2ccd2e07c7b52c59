package tmdb

// Genre is a TMDB genre entry.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// CastMember is one credited performer.
type CastMember struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Character   string `json:"character"`
	Order       int    `json:"order"`
	ProfilePath string `json:"profile_path"`
}

// CrewMember is one credited crew entry.
type CrewMember struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Job        string `json:"job"`
	Department string `json:"department"`
}

// Credits holds cast and crew for a movie or show.
type Credits struct {
	Cast []CastMember `json:"cast"`
	Crew []CrewMember `json:"crew"`
}

// Image is one poster or backdrop entry.
type Image struct {
	FilePath    string  `json:"file_path"`
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	VoteAverage float64 `json:"vote_average"`
	ISO639      string  `json:"iso_639_1"`
}

// Images groups the poster and backdrop lists.
type Images struct {
	Posters   []Image `json:"posters"`
	Backdrops []Image `json:"backdrops"`
}

// Keyword is a TMDB keyword entry.
type Keyword struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Keywords covers both payload shapes: movies use "keywords", TV uses
// "results".
type Keywords struct {
	Keywords []Keyword `json:"keywords"`
	Results  []Keyword `json:"results"`
}

// All returns the keyword list regardless of media type.
func (k Keywords) All() []Keyword {
	if len(k.Keywords) > 0 {
		return k.Keywords
	}
	return k.Results
}

// ExternalIDs cross-references other catalogs.
type ExternalIDs struct {
	IMDBID     string `json:"imdb_id"`
	TVDBID     int    `json:"tvdb_id"`
	WikidataID string `json:"wikidata_id"`
}

// Translation is one localized metadata entry.
type Translation struct {
	ISO639  string          `json:"iso_639_1"`
	ISO3166 string          `json:"iso_3166_1"`
	Name    string          `json:"name"`
	Data    TranslationData `json:"data"`
}

// TranslationData holds the translated fields we care about.
type TranslationData struct {
	Title    string `json:"title"`
	Name     string `json:"name"`
	Overview string `json:"overview"`
	Tagline  string `json:"tagline"`
}

// Translations is the translations envelope.
type Translations struct {
	Translations []Translation `json:"translations"`
}

// Provider is one watch-provider entry.
type Provider struct {
	ProviderID   int    `json:"provider_id"`
	ProviderName string `json:"provider_name"`
}

// ProviderRegion lists availability in one country.
type ProviderRegion struct {
	Link     string     `json:"link"`
	Flatrate []Provider `json:"flatrate"`
	Rent     []Provider `json:"rent"`
	Buy      []Provider `json:"buy"`
}

// WatchProviders maps country code to availability.
type WatchProviders struct {
	Results map[string]ProviderRegion `json:"results"`
}

// Network is a broadcasting network entry.
type Network struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// MovieDetails is the full movie payload with appended sub-resources.
type MovieDetails struct {
	ID               int            `json:"id"`
	Title            string         `json:"title"`
	OriginalTitle    string         `json:"original_title"`
	Overview         string         `json:"overview"`
	Tagline          string         `json:"tagline"`
	ReleaseDate      string         `json:"release_date"`
	Runtime          int            `json:"runtime"`
	Genres           []Genre        `json:"genres"`
	OriginalLanguage string         `json:"original_language"`
	PosterPath       string         `json:"poster_path"`
	BackdropPath     string         `json:"backdrop_path"`
	VoteAverage      float64        `json:"vote_average"`
	VoteCount        int            `json:"vote_count"`
	Popularity       float64        `json:"popularity"`
	Status           string         `json:"status"`
	Credits          Credits        `json:"credits"`
	Images           Images         `json:"images"`
	Keywords         Keywords       `json:"keywords"`
	ExternalIDs      ExternalIDs    `json:"external_ids"`
	Translations     Translations   `json:"translations"`
	WatchProviders   WatchProviders `json:"watch/providers"`
}

// SeasonSummary is the per-season entry embedded in TV details.
type SeasonSummary struct {
	ID           int    `json:"id"`
	SeasonNumber int    `json:"season_number"`
	Name         string `json:"name"`
	Overview     string `json:"overview"`
	EpisodeCount int    `json:"episode_count"`
	AirDate      string `json:"air_date"`
	PosterPath   string `json:"poster_path"`
}

// TVDetails is the full TV show payload with appended sub-resources.
type TVDetails struct {
	ID               int             `json:"id"`
	Name             string          `json:"name"`
	OriginalName     string          `json:"original_name"`
	Overview         string          `json:"overview"`
	FirstAirDate     string          `json:"first_air_date"`
	LastAirDate      string          `json:"last_air_date"`
	NumberOfSeasons  int             `json:"number_of_seasons"`
	NumberOfEpisodes int             `json:"number_of_episodes"`
	EpisodeRunTime   []int           `json:"episode_run_time"`
	Genres           []Genre         `json:"genres"`
	Networks         []Network       `json:"networks"`
	OriginalLanguage string          `json:"original_language"`
	PosterPath       string          `json:"poster_path"`
	BackdropPath     string          `json:"backdrop_path"`
	VoteAverage      float64         `json:"vote_average"`
	VoteCount        int             `json:"vote_count"`
	Status           string          `json:"status"`
	Seasons          []SeasonSummary `json:"seasons"`
	Credits          Credits         `json:"credits"`
	Images           Images          `json:"images"`
	Keywords         Keywords        `json:"keywords"`
	ExternalIDs      ExternalIDs     `json:"external_ids"`
	Translations     Translations    `json:"translations"`
	WatchProviders   WatchProviders  `json:"watch/providers"`
}

// Episode is one episode inside a season payload.
type Episode struct {
	ID            int     `json:"id"`
	EpisodeNumber int     `json:"episode_number"`
	SeasonNumber  int     `json:"season_number"`
	Name          string  `json:"name"`
	Overview      string  `json:"overview"`
	AirDate       string  `json:"air_date"`
	Runtime       int     `json:"runtime"`
	VoteAverage   float64 `json:"vote_average"`
	StillPath     string  `json:"still_path"`
}

// SeasonDetails is the full season payload with its episode list.
type SeasonDetails struct {
	ID           int       `json:"id"`
	SeasonNumber int       `json:"season_number"`
	Name         string    `json:"name"`
	Overview     string    `json:"overview"`
	AirDate      string    `json:"air_date"`
	PosterPath   string    `json:"poster_path"`
	Episodes     []Episode `json:"episodes"`
}
