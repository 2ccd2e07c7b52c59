package syncer

import (
	"context"
	"log/slog"
	"strings"

	"github.com/medialibre/mediatheque/internal/sources/tmdb"
	"github.com/medialibre/mediatheque/internal/translate"
)

const (
	// below this length a synopsis counts as missing and triggers the
	// enrichment chain
	minSynopsisLength = 20
	// the translation service is not worth calling for anything shorter
	minTranslatableLength = 10
)

// Translator is the external translation hook. *translate.Client satisfies
// it; a client without a credential reports a skip, never an error.
type Translator interface {
	Translate(ctx context.Context, text, targetLang, domainHint string) (translate.Result, error)
}

// enrichSynopsis resolves the best synopsis for the target language and
// reports which strategy supplied it: "tmdb" for the payload's own overview,
// "tmdb_<lang>" for a provided translation entry, "groq" for the external
// service. Every strategy failing keeps the original text; enrichment never
// blocks an upsert.
func enrichSynopsis(ctx context.Context, translator Translator, overview string,
	translations tmdb.Translations, targetLang, fallbackLang, domainHint string) (string, string) {

	if len(strings.TrimSpace(overview)) >= minSynopsisLength {
		return overview, "tmdb"
	}

	if text := translationFor(translations, targetLang); text != "" {
		return text, "tmdb_" + targetLang
	}
	if fallbackLang != "" && fallbackLang != targetLang {
		if text := translationFor(translations, fallbackLang); text != "" {
			return text, "tmdb_" + fallbackLang
		}
	}

	source := strings.TrimSpace(overview)
	if len(source) >= minTranslatableLength && translator != nil {
		result, err := translator.Translate(ctx, source, targetLang, domainHint)
		if err != nil {
			slog.Warn("synopsis translation failed", "error", err)
		} else if result.Success {
			return result.Text, "groq"
		}
	}

	return overview, "tmdb"
}

// translationFor returns the overview of the entry tagged lang, if any
// usable one exists.
func translationFor(translations tmdb.Translations, lang string) string {
	for _, tr := range translations.Translations {
		if tr.ISO639 != lang {
			continue
		}
		text := strings.TrimSpace(tr.Data.Overview)
		if len(text) >= minSynopsisLength {
			return text
		}
	}
	return ""
}
