package omdb

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
)

var (
	nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9\s]`)
	whitespaceRun   = regexp.MustCompile(`\s+`)
	folder          = cases.Fold()
)

// CleanTitle strips everything but ASCII letters, digits and whitespace,
// collapses whitespace runs to one space and trims the result
func CleanTitle(title string) string {
	cleaned := nonAlphanumeric.ReplaceAllString(strings.TrimSpace(title), "")
	cleaned = whitespaceRun.ReplaceAllString(cleaned, " ")
	return strings.TrimSpace(cleaned)
}

// MapMediaType maps a free-form media type onto OMDb's type vocabulary.
// An empty result means the search is not restricted by type.
func MapMediaType(mediaType string) string {
	switch folder.String(mediaType) {
	case "movie", "film":
		return "movie"
	case "series", "serie", "tv":
		return "series"
	case "documentary", "dokumentation":
		// OMDb has no documentary type
		return "movie"
	case "anime":
		return "series"
	default:
		return ""
	}
}
