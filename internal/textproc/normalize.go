// Package textproc turns raw per-region OCR text into corrected,
// lookup-ready strings: junk stripping, language-aware normalization and
// dictionary-based spelling correction with an over-correction guard.
package textproc

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Lowercase alphabets per supported language. Normalization removes every
// character outside the language's alphabet and the digits.
var alphabets = map[string]string{
	"de": "abcdefghijklmnopqrstuvwxyzäöüß",
	"fr": "abcdefghijklmnopqrstuvwxyzàâçéèêëîïôùûüÿ",
	"en": "abcdefghijklmnopqrstuvwxyz",
	"it": "abcdefghijklmnopqrstuvwxyzàèéìòù",
}

// Spine OCR junk removed before character filtering. ISBNs, dashed
// fragments and quotes show up constantly on spines and are never part of a
// usable title.
var junkPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)ISBN`),
	regexp.MustCompile(`\d+\.\d+`),
	regexp.MustCompile(`\s-\w+(\b|$)`),
	regexp.MustCompile(`\s#\s`),
	regexp.MustCompile(`["']`),
}

// Stray number junk removed after character filtering. Filtering turns
// separators like "_" into spaces, creating digit-group boundaries that do
// not exist in the raw text; matching only afterwards keeps normalization
// idempotent.
var digitJunkPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b0\d+\b`),
	regexp.MustCompile(`\b\d{1,3}\b`),
}

// NormalizedText is the deterministic, lowercase, language-filtered form of
// one OCR region. Callers must check Empty before correcting or querying.
type NormalizedText struct {
	Text     string
	Language string
}

// Empty reports whether nothing usable survived normalization.
func (n NormalizedText) Empty() bool {
	return n.Text == ""
}

// Normalize strips junk and every character that is not a letter of the
// language's alphabet or a digit, collapses whitespace and lowercases.
// Pure and idempotent. Unknown languages fall back to the English alphabet.
func Normalize(raw, lang string) NormalizedText {
	alphabet, ok := alphabets[lang]
	if !ok {
		alphabet = alphabets["en"]
	}

	text := norm.NFKC.String(raw)
	for _, p := range junkPatterns {
		text = p.ReplaceAllString(text, " ")
	}
	text = strings.ToLower(text)

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch {
		case unicode.IsDigit(r) || strings.ContainsRune(alphabet, r):
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}

	text = b.String()
	for _, p := range digitJunkPatterns {
		text = p.ReplaceAllString(text, " ")
	}

	return NormalizedText{
		Text:     strings.Join(strings.Fields(text), " "),
		Language: lang,
	}
}
