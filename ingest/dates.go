package ingest

import (
	"regexp"
	"time"
)

// dateLayouts are tried in order against a raw date token. The two-digit
// slash form comes first because it is what the legacy sheets carry.
var dateLayouts = []string{
	"1/2/06",
	"1-2-2006",
	"2006-01-02",
	"1/2/2006",
	"1-2-06",
}

// filenameDatePattern matches a date embedded in an upload's filename,
// e.g. "report_8-7-2025.xlsx" or "aoi 8/7/25.xls".
var filenameDatePattern = regexp.MustCompile(`(\d{1,4}[/-]\d{1,2}[/-]\d{1,4})`)

// NormalizeDate parses a raw date token into ISO 8601 YYYY-MM-DD. An
// unparseable token returns "" rather than an error; callers fall
// through to the next provider in their chain.
func NormalizeDate(token string) string {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, token); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return ""
}

// DateFromFilename extracts and normalizes a date embedded in the
// filename. Returns "" when the filename carries no recognizable date.
func DateFromFilename(filename string) string {
	match := filenameDatePattern.FindString(filename)
	if match == "" {
		return ""
	}
	return NormalizeDate(match)
}

// DateProvider yields a candidate ISO date, or "" when it has none.
type DateProvider func() string

// ResolveDate walks the providers in order and returns the first
// non-empty date. "" is the legitimate terminal state when every
// provider comes up empty.
func ResolveDate(providers ...DateProvider) string {
	for _, provider := range providers {
		if date := provider(); date != "" {
			return date
		}
	}
	return ""
}

// Literal wraps a fixed string (typically the caller-supplied manual
// date) as a provider.
func Literal(date string) DateProvider {
	return func() string { return date }
}
