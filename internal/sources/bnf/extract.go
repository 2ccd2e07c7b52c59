package bnf

import (
	"html"
	"regexp"
	"strings"

	"github.com/medialibre/mediatheque/internal/canonical"
)

// The SRU payload is XML but the subset we need is flat Dublin-Core
// elements, so extraction is field-scoped pattern matching rather than a
// full XML parse. One malformed record never aborts the whole response.

var (
	recordRe     = regexp.MustCompile(`(?s)<srw:record>.*?</srw:record>`)
	numRecordsRe = regexp.MustCompile(`<srw:numberOfRecords>(\d+)</srw:numberOfRecords>`)

	dcFieldRes = map[string]*regexp.Regexp{
		"title":       dcRe("title"),
		"creator":     dcRe("creator"),
		"subject":     dcRe("subject"),
		"date":        dcRe("date"),
		"publisher":   dcRe("publisher"),
		"language":    dcRe("language"),
		"description": dcRe("description"),
		"identifier":  dcRe("identifier"),
	}

	arkRe      = regexp.MustCompile(`ark:/12148/cb\d+[0-9a-z]?`)
	frbnfRe    = regexp.MustCompile(`FRBNF\d+`)
	isbnTagRe  = regexp.MustCompile(`(?i)ISBN\s+([0-9Xx-]+)`)
	bareISBNRe = regexp.MustCompile(`\b[0-9]{10}([0-9]{3})?\b`)
)

func dcRe(field string) *regexp.Regexp {
	return regexp.MustCompile(`(?s)<dc:` + field + `[^>]*>(.*?)</dc:` + field + `>`)
}

// rawRecord is the flat field-to-values extraction of one SRU record.
type rawRecord map[string][]string

// splitRecords cuts the response into per-record XML fragments.
func splitRecords(body string) []string {
	return recordRe.FindAllString(body, -1)
}

// totalRecords reads the SRU result count, 0 when absent.
func totalRecords(body string) int {
	m := numRecordsRe.FindStringSubmatch(body)
	if m == nil {
		return 0
	}
	n := 0
	for _, r := range m[1] {
		n = n*10 + int(r-'0')
	}
	return n
}

// extractFields pulls every Dublin-Core field of interest from one record
// fragment.
func extractFields(fragment string) rawRecord {
	raw := make(rawRecord, len(dcFieldRes))
	for field, re := range dcFieldRes {
		for _, m := range re.FindAllStringSubmatch(fragment, -1) {
			value := strings.TrimSpace(html.UnescapeString(m[1]))
			if value != "" {
				raw[field] = append(raw[field], value)
			}
		}
	}
	return raw
}

// ResolveIdentifier picks the external id from the identifier values, in
// priority order: an ARK path, then an FRBNF number, then any raw value
// containing ark:/12148/.
func ResolveIdentifier(identifiers []string) string {
	for _, id := range identifiers {
		if ark := arkRe.FindString(id); ark != "" {
			return ark
		}
	}
	for _, id := range identifiers {
		if frbnf := frbnfRe.FindString(id); frbnf != "" {
			return frbnf
		}
	}
	for _, id := range identifiers {
		if strings.Contains(id, "ark:/12148/") {
			return id
		}
	}
	return ""
}

// ExtractISBNs scans identifier values for an explicit "ISBN ..." form or a
// bare 10/13-digit token. Hyphens are stripped before length classification.
func ExtractISBNs(identifiers []string) (isbn10, isbn13 string) {
	consider := func(raw string) {
		i10, i13 := canonical.ClassifyISBN(raw)
		if isbn10 == "" && i10 != "" {
			isbn10 = i10
		}
		if isbn13 == "" && i13 != "" {
			isbn13 = i13
		}
	}

	for _, id := range identifiers {
		if m := isbnTagRe.FindStringSubmatch(id); m != nil {
			consider(m[1])
			continue
		}
		if bare := bareISBNRe.FindString(id); bare != "" {
			consider(bare)
		}
	}
	return isbn10, isbn13
}
