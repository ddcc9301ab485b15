// Package rank scores gathered candidate records against the corrected
// spine text, validates them against a confidence threshold and picks the
// best match plus a short list of alternatives.
package rank

import (
	"sort"
	"strings"

	"go.uber.org/zap"

	"spinelookup/internal/query"
	"spinelookup/internal/sources"
	"spinelookup/internal/textproc"
)

// Candidate is a record tagged with its source's priority rank.
type Candidate struct {
	Record   sources.BookRecord
	Priority int
}

// ScoredRecord wraps an immutable BookRecord with its match score.
// Validated is set only when the title similarity alone clears the
// configured minimum, so callers can tell a confident match from a best
// guess.
type ScoredRecord struct {
	Record     sources.BookRecord
	MatchScore float64
	Validated  bool
}

// LookupResult is the terminal output for one spine.
type LookupResult struct {
	Best             *ScoredRecord
	Alternatives     []ScoredRecord
	AttemptedSources []string
	Query            query.Query
}

// Config tunes scoring and validation.
type Config struct {
	MinValidScore   float64
	MaxAlternatives int
	AuthorBonus     float64
	PriorityBonus   float64
}

// Ranker scores and validates candidates.
type Ranker struct {
	cfg Config
	log *zap.SugaredLogger
}

func New(cfg Config, log *zap.SugaredLogger) *Ranker {
	return &Ranker{cfg: cfg, log: log}
}

// Rank scores every candidate against the corrected text: title similarity
// as the primary term, a bonus when a record author matches a preserved
// name, and a small source-priority bonus as tie break. Alternatives are
// deduplicated by normalized title and first author.
func (r *Ranker) Rank(cands []Candidate, corrected textproc.CorrectionResult, q query.Query, attempted []string) LookupResult {
	result := LookupResult{
		AttemptedSources: attempted,
		Query:            q,
	}
	if len(cands) == 0 {
		return result
	}

	preserved := corrected.PreservedTokens()
	numSources := len(attempted)
	if numSources == 0 {
		numSources = 1
	}

	type scored struct {
		ScoredRecord
		priority int
		order    int
	}

	all := make([]scored, 0, len(cands))
	for i, cand := range cands {
		title := textproc.NormalizeTitle(cand.Record.Title, corrected.Language)
		similarity := textproc.Similarity(title, corrected.Corrected)

		score := similarity
		if authorMatches(cand.Record.Authors, preserved) {
			score += r.cfg.AuthorBonus
		}
		if numSources > 1 {
			score += r.cfg.PriorityBonus * float64(numSources-1-cand.Priority) / float64(numSources-1)
		}

		all = append(all, scored{
			ScoredRecord: ScoredRecord{
				Record:     cand.Record,
				MatchScore: score,
				Validated:  similarity >= r.cfg.MinValidScore,
			},
			priority: cand.Priority,
			order:    i,
		})
	}

	sort.Slice(all, func(i, j int) bool {
		if all[i].MatchScore != all[j].MatchScore {
			return all[i].MatchScore > all[j].MatchScore
		}
		if all[i].priority != all[j].priority {
			return all[i].priority < all[j].priority
		}
		return all[i].order < all[j].order
	})

	seen := map[string]struct{}{}
	for _, s := range all {
		key := dedupKey(s.Record, corrected.Language)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		if result.Best == nil {
			best := s.ScoredRecord
			result.Best = &best
			continue
		}
		if len(result.Alternatives) >= r.cfg.MaxAlternatives {
			break
		}
		result.Alternatives = append(result.Alternatives, s.ScoredRecord)
	}

	r.log.Debugw("ranked candidates",
		"candidates", len(cands),
		"best", result.Best.Record.Title,
		"score", result.Best.MatchScore,
		"validated", result.Best.Validated)

	return result
}

func authorMatches(authors []string, preserved map[string]struct{}) bool {
	for _, author := range authors {
		for _, tok := range strings.Fields(strings.ToLower(author)) {
			if _, ok := preserved[tok]; ok {
				return true
			}
		}
	}
	return false
}

func dedupKey(rec sources.BookRecord, lang string) string {
	first := ""
	if len(rec.Authors) > 0 {
		first = strings.ToLower(strings.TrimSpace(rec.Authors[0]))
	}
	return textproc.NormalizeTitle(rec.Title, lang) + "|" + first
}
