package syncer

import (
	"encoding/json"

	"github.com/medialibre/mediatheque/internal/sources/tmdb"
)

// The encode helpers form the boundary between typed API payloads and the
// JSON text columns. They never fail: nil, empty or unmarshalable input
// becomes a SQL NULL.

func encodeJSON(v any) *string {
	if v == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	s := string(data)
	return &s
}

func encodeStrings(values []string) *string {
	if len(values) == 0 {
		return nil
	}
	return encodeJSON(values)
}

func encodeCredits(c tmdb.Credits) *string {
	if len(c.Cast) == 0 && len(c.Crew) == 0 {
		return nil
	}
	return encodeJSON(c)
}

func encodeImages(i tmdb.Images) *string {
	if len(i.Posters) == 0 && len(i.Backdrops) == 0 {
		return nil
	}
	return encodeJSON(i)
}

func encodeKeywords(k tmdb.Keywords) *string {
	all := k.All()
	if len(all) == 0 {
		return nil
	}
	return encodeJSON(all)
}

func encodeProviders(p tmdb.WatchProviders) *string {
	if len(p.Results) == 0 {
		return nil
	}
	return encodeJSON(p.Results)
}

func encodeExternalIDs(e tmdb.ExternalIDs) *string {
	if e == (tmdb.ExternalIDs{}) {
		return nil
	}
	return encodeJSON(e)
}

func encodeTranslations(t tmdb.Translations) *string {
	if len(t.Translations) == 0 {
		return nil
	}
	// only the language tags are worth keeping; full translated texts are
	// resolved at enrichment time
	langs := make([]string, 0, len(t.Translations))
	for _, tr := range t.Translations {
		langs = append(langs, tr.ISO639)
	}
	return encodeJSON(langs)
}
