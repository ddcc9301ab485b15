package textproc

import (
	"regexp"
	"strings"
)

// Catalogues are inconsistent about parenthesised additions
// ("(writing as ...)"), so they are dropped before comparing titles.
var parensPattern = regexp.MustCompile(`\(.*?\)`)

// NormalizeTitle reduces a catalogue title to the comparable form used for
// similarity scoring: subtitle and bracketed text removed, then the same
// normalization applied to OCR text. Subtitles are dropped because the
// sources disagree on whether they are part of the title.
func NormalizeTitle(title, lang string) string {
	if i := strings.Index(title, ":"); i >= 0 {
		title = title[:i]
	}
	title = parensPattern.ReplaceAllString(title, " ")
	return Normalize(title, lang).Text
}
