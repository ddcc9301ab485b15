package textproc

import (
	"strings"

	"go.uber.org/zap"

	"spinelookup/internal/lexicon"
)

// Span marks a byte range [Start,End) in the corrected text.
type Span struct {
	Start int
	End   int
}

// CorrectionResult is the corrected form of one normalized region.
// PreservedNames are the spans of recognized proper names; the corrector
// never rewrites the text inside them.
type CorrectionResult struct {
	Corrected      string
	AutoCorrected  bool
	PreservedNames []Span
	Language       string
}

// PreservedTokens returns the preserved name tokens as a lowercase set.
func (r CorrectionResult) PreservedTokens() map[string]struct{} {
	tokens := map[string]struct{}{}
	for _, span := range r.PreservedNames {
		if span.Start < 0 || span.End > len(r.Corrected) || span.Start >= span.End {
			continue
		}
		for _, tok := range strings.Fields(r.Corrected[span.Start:span.End]) {
			tokens[strings.ToLower(tok)] = struct{}{}
		}
	}
	return tokens
}

// Corrector fixes OCR misreads token by token against the lexicon while
// leaving recognized names alone, then guards the result against being
// forced onto an unrelated known title.
type Corrector struct {
	store            *lexicon.Store
	guardMaxDistance float64
	guardMinJaccard  float64
	log              *zap.SugaredLogger
}

// NewCorrector wires a corrector to a lexicon store. guardMaxDistance is the
// normalized edit distance above which a closest-title match is discarded;
// guardMinJaccard is the word overlap it must additionally reach.
func NewCorrector(store *lexicon.Store, guardMaxDistance, guardMinJaccard float64, log *zap.SugaredLogger) *Corrector {
	return &Corrector{
		store:            store,
		guardMaxDistance: guardMaxDistance,
		guardMinJaccard:  guardMinJaccard,
		log:              log,
	}
}

// Correct runs token-level spelling correction and the over-correction
// guard. The language of the normalized text selects the dictionaries.
func (c *Corrector) Correct(n NormalizedText) CorrectionResult {
	result := CorrectionResult{Language: n.Language}
	if n.Empty() {
		return result
	}

	var b strings.Builder
	var spans []Span
	var preservedTokens []string

	for i, tok := range strings.Fields(n.Text) {
		if i > 0 {
			b.WriteByte(' ')
		}

		if c.store.IsKnownName(tok, n.Language) {
			start := b.Len()
			b.WriteString(tok)
			spans = append(spans, Span{Start: start, End: b.Len()})
			preservedTokens = append(preservedTokens, tok)
			continue
		}

		corrected, dist := c.store.Correct(tok, n.Language)
		if dist > 0 {
			c.log.Debugw("token corrected", "from", tok, "to", corrected, "distance", dist)
			result.AutoCorrected = true
		}
		b.WriteString(corrected)
	}

	result.Corrected = b.String()
	result.PreservedNames = spans

	if title, ok := c.applyGuard(result.Corrected, n.Language, preservedTokens); ok {
		result.Corrected = title
		result.AutoCorrected = true
		result.PreservedNames = relocateSpans(title, preservedTokens)
	}

	return result
}

// applyGuard checks whether the closest known title is near enough to
// replace the token-corrected text. A match that is too far away, shares too
// few words, or would lose a preserved name is rejected so that genuine but
// unknown titles are not forced onto unrelated known ones.
func (c *Corrector) applyGuard(corrected, lang string, preserved []string) (string, bool) {
	title, dist := c.store.ClosestTitle(corrected, lang)
	if dist < 0 || title == corrected {
		return "", false
	}

	maxLen := len(corrected)
	if len(title) > maxLen {
		maxLen = len(title)
	}
	if maxLen == 0 {
		return "", false
	}

	ratio := float64(dist) / float64(maxLen)
	if ratio > c.guardMaxDistance {
		c.log.Debugw("title match too far", "title", title, "ratio", ratio)
		return "", false
	}

	if jaccard(corrected, title) < c.guardMinJaccard {
		c.log.Debugw("title match shares too few words", "title", title)
		return "", false
	}

	titleTokens := map[string]struct{}{}
	for _, tok := range strings.Fields(title) {
		titleTokens[tok] = struct{}{}
	}
	for _, name := range preserved {
		if _, ok := titleTokens[name]; !ok {
			c.log.Debugw("title match drops preserved name", "title", title, "name", name)
			return "", false
		}
	}

	c.log.Debugw("corrected to known title", "from", corrected, "to", title)
	return title, true
}

// jaccard is the word-set overlap of two strings.
func jaccard(a, b string) float64 {
	setA := map[string]struct{}{}
	for _, tok := range strings.Fields(a) {
		setA[tok] = struct{}{}
	}

	intersection, union := 0, len(setA)
	seen := map[string]struct{}{}
	for _, tok := range strings.Fields(b) {
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		if _, ok := setA[tok]; ok {
			intersection++
		} else {
			union++
		}
	}

	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// relocateSpans recomputes name spans after the guard substituted the whole
// string. Every preserved name is known to occur in the new text.
func relocateSpans(text string, preserved []string) []Span {
	var spans []Span
	names := map[string]struct{}{}
	for _, name := range preserved {
		names[name] = struct{}{}
	}

	offset := 0
	for _, tok := range strings.Fields(text) {
		start := strings.Index(text[offset:], tok) + offset
		end := start + len(tok)
		if _, ok := names[tok]; ok {
			spans = append(spans, Span{Start: start, End: end})
		}
		offset = end
	}

	return spans
}

// JoinResults merges per-region correction results in reading order into a
// single space-joined result with relocated name spans.
func JoinResults(results []CorrectionResult) CorrectionResult {
	joined := CorrectionResult{}

	var b strings.Builder
	for _, r := range results {
		if r.Corrected == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		offset := b.Len()
		b.WriteString(r.Corrected)

		for _, span := range r.PreservedNames {
			joined.PreservedNames = append(joined.PreservedNames, Span{
				Start: span.Start + offset,
				End:   span.End + offset,
			})
		}
		joined.AutoCorrected = joined.AutoCorrected || r.AutoCorrected
		if joined.Language == "" {
			joined.Language = r.Language
		}
	}

	joined.Corrected = b.String()
	return joined
}
