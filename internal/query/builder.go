// Package query assembles the candidate search queries for one spine from
// its corrected region texts.
package query

import (
	"strings"

	"go.uber.org/zap"

	"spinelookup/internal/lexicon"
	"spinelookup/internal/textproc"
)

// Role tells a source what shape of query it is being handed. Sources skip
// roles they cannot express in their protocol.
type Role int

const (
	RoleAny Role = iota
	RoleTitle
	RoleTitleAndAuthor
)

func (r Role) String() string {
	switch r {
	case RoleTitle:
		return "title"
	case RoleTitleAndAuthor:
		return "title+author"
	default:
		return "any"
	}
}

// Query is one lookup attempt, ephemeral per spine.
type Query struct {
	Text     string
	Role     Role
	Language string
}

// Builder derives queries from corrected text, using the lexicon to spot
// author names at the edges of the spine.
type Builder struct {
	store *lexicon.Store
	log   *zap.SugaredLogger
}

func NewBuilder(store *lexicon.Store, log *zap.SugaredLogger) *Builder {
	return &Builder{store: store, log: log}
}

// Build concatenates the corrected region texts in reading order and emits
// queries in priority order: the full string, the full string as
// title+author when names are present, an author-stripped variant, and the
// leading non-name token run (spines usually carry the title before the
// author). Duplicates are dropped.
func (b *Builder) Build(results []textproc.CorrectionResult, lang string) []Query {
	var parts []string
	for _, r := range results {
		if r.Corrected != "" {
			parts = append(parts, r.Corrected)
		}
	}

	joined := strings.Join(parts, " ")
	if joined == "" {
		return nil
	}

	tokens := strings.Fields(joined)
	isName := make([]bool, len(tokens))
	anyName := false
	for i, tok := range tokens {
		isName[i] = b.store.IsKnownName(tok, lang)
		anyName = anyName || isName[i]
	}

	var queries []Query
	seen := map[string]struct{}{}
	add := func(text string, role Role) {
		text = strings.TrimSpace(text)
		if text == "" {
			return
		}
		key := role.String() + "|" + text
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		queries = append(queries, Query{Text: text, Role: role, Language: lang})
	}

	add(joined, RoleAny)

	if anyName {
		add(joined, RoleTitleAndAuthor)
	}

	// Strip runs of known names from both ends; what remains is the likely
	// title.
	start, end := 0, len(tokens)
	for start < end && isName[start] {
		start++
	}
	for end > start && isName[end-1] {
		end--
	}
	if stripped := strings.Join(tokens[start:end], " "); stripped != joined {
		add(stripped, RoleTitle)
	}

	// Leading non-name token run.
	lead := 0
	for lead < len(tokens) && !isName[lead] {
		lead++
	}
	if lead > 0 && lead < len(tokens) {
		add(strings.Join(tokens[:lead], " "), RoleTitle)
	}

	b.log.Debugw("queries built", "count", len(queries), "joined", joined)
	return queries
}
