package canonical

import (
	"strings"
	"unicode"
)

// NormalizeDate anchors year-only dates to January 1st. A 4-digit year
// becomes "<year>-01-01"; any other non-empty value is kept as-is.
func NormalizeDate(date string) string {
	date = strings.TrimSpace(date)
	if len(date) == 4 && isDigits(date) {
		return date + "-01-01"
	}
	return date
}

// NormalizeISBN strips hyphens and spaces so length classification works on
// bare digit runs.
func NormalizeISBN(isbn string) string {
	isbn = strings.ReplaceAll(isbn, "-", "")
	return strings.ReplaceAll(isbn, " ", "")
}

// ClassifyISBN returns the normalized value and whether it is an ISBN-10 or
// ISBN-13. The final character of an ISBN-10 may be the X check digit.
func ClassifyISBN(raw string) (isbn10, isbn13 string) {
	n := NormalizeISBN(raw)
	switch {
	case len(n) == 13 && isDigits(n):
		return "", n
	case len(n) == 10 && isISBN10(n):
		return n, ""
	}
	return "", ""
}

// NormalizeTitle produces the fuzzy-equivalence form of a title: trimmed and
// case-folded. Deliberately no diacritic stripping, matching the loose
// behaviour of the merge step.
func NormalizeTitle(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}

// DedupeStrings keeps the first occurrence of each value, preserving order.
func DedupeStrings(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func isISBN10(s string) bool {
	if len(s) != 10 {
		return false
	}
	for i, r := range s {
		if unicode.IsDigit(r) {
			continue
		}
		// X only valid as the check digit
		if i == 9 && (r == 'X' || r == 'x') {
			continue
		}
		return false
	}
	return true
}
