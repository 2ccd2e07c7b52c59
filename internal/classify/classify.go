// Package classify decides which media domains a normalized record belongs
// to, driven by curated keyword, series and publisher tables. The tables are
// heuristics: the boundary between "BD", "comic" and plain "book" inside one
// Google Books result stream is known to be imprecise, and a record may
// legitimately match several domains at once.
package classify

import (
	_ "embed"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/medialibre/mediatheque/internal/canonical"
)

//go:embed tables.yaml
var tablesYAML []byte

// table holds the match lists for one domain.
type table struct {
	Keywords   []string `yaml:"keywords"`
	Series     []string `yaml:"series"`
	Publishers []string `yaml:"publishers"`
}

var (
	tablesOnce sync.Once
	tables     map[string]table
)

func loadTables() map[string]table {
	tablesOnce.Do(func() {
		tables = make(map[string]table)
		if err := yaml.Unmarshal(tablesYAML, &tables); err != nil {
			// the embedded file ships with the binary; a parse failure
			// is a build defect, so fail loudly
			panic("classify: invalid embedded tables: " + err.Error())
		}
	})
	return tables
}

// Matches reports whether rec belongs to domain. Movies and TV shows come
// from dedicated sources and always match their own domain; book is the
// general fallback and matches everything. The drawn-media domains match on
// keyword, known series or known publisher.
func Matches(domain canonical.Domain, rec canonical.Record) bool {
	switch domain {
	case canonical.DomainBook, canonical.DomainMovie, canonical.DomainTV:
		return true
	}

	t, ok := loadTables()[string(domain)]
	if !ok {
		return false
	}

	haystack := buildHaystack(rec)
	for _, kw := range t.Keywords {
		if strings.Contains(haystack, kw) {
			return true
		}
	}

	title := strings.ToLower(strings.TrimSpace(rec.Title))
	for _, series := range t.Series {
		if strings.HasPrefix(title, series) {
			return true
		}
	}

	publisher := strings.ToLower(strings.TrimSpace(rec.Publisher))
	if publisher != "" {
		for _, p := range t.Publishers {
			if strings.Contains(publisher, p) {
				return true
			}
		}
	}
	return false
}

// Domains returns every domain rec matches, in a stable order.
func Domains(rec canonical.Record) []canonical.Domain {
	all := []canonical.Domain{
		canonical.DomainBook,
		canonical.DomainBD,
		canonical.DomainComic,
		canonical.DomainManga,
	}
	var matched []canonical.Domain
	for _, d := range all {
		if Matches(d, rec) {
			matched = append(matched, d)
		}
	}
	return matched
}

func buildHaystack(rec canonical.Record) string {
	parts := []string{rec.Title, rec.Subtitle, rec.Synopsis}
	parts = append(parts, rec.Genres...)
	return strings.ToLower(strings.Join(parts, " "))
}
