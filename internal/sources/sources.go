// Package sources defines the bibliographic source abstraction. Each
// adapter owns its protocol and auth details; the pipeline only depends on
// the Source interface.
package sources

import (
	"context"
	"encoding/json"

	"spinelookup/internal/query"
)

// BookRecord is one candidate identification as returned by a source.
// Records are never mutated after creation; ranking wraps them instead.
type BookRecord struct {
	Title            string
	Authors          []string
	Source           string
	SourceConfidence float64
	Year             string
	ISBN             string
	Raw              json.RawMessage
}

// Source is a bibliographic search backend. Search must return within the
// caller's context deadline and surface failures as errors, never panics;
// an empty slice means "no hits" and is not an error.
type Source interface {
	Name() string
	Supports(role query.Role) bool
	Search(ctx context.Context, q query.Query) ([]BookRecord, error)
}

var iso639_3 = map[string]string{
	"de": "ger",
	"en": "eng",
	"fr": "fre",
	"it": "ita",
}

// ISO639_3 maps a two-letter language code to its bibliographic three-letter
// form, returning the input unchanged when unknown.
func ISO639_3(code string) string {
	if three, ok := iso639_3[code]; ok {
		return three
	}
	return code
}
