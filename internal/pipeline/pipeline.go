// Package pipeline wires normalization, correction, query building, lookup
// and ranking into the per-spine identification flow.
package pipeline

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/zap"

	"spinelookup/internal/lookup"
	"spinelookup/internal/query"
	"spinelookup/internal/rank"
	"spinelookup/internal/textproc"
)

// RawTextRegion is one OCR'd text box on a spine, in the reading order
// assigned upstream.
type RawTextRegion struct {
	Text          string  `json:"text"`
	SourceOrder   int     `json:"source_order"`
	OCRConfidence float64 `json:"ocr_confidence"`
}

// Pipeline processes one spine at a time; independent spines can run in
// parallel because every shared component is read-only.
type Pipeline struct {
	corrector *textproc.Corrector
	builder   *query.Builder
	orch      *lookup.Orchestrator
	ranker    *rank.Ranker
	log       *zap.SugaredLogger
}

func New(corrector *textproc.Corrector, builder *query.Builder, orch *lookup.Orchestrator, ranker *rank.Ranker, log *zap.SugaredLogger) *Pipeline {
	return &Pipeline{
		corrector: corrector,
		builder:   builder,
		orch:      orch,
		ranker:    ranker,
		log:       log,
	}
}

// Identify turns the ordered OCR regions of one spine into a ranked,
// validated identification. Regions that normalize to nothing are dropped;
// if no usable text remains the lookup is never invoked and the result has
// no best record and no attempted sources. A cancelled context returns the
// context error and no partial result.
func (p *Pipeline) Identify(ctx context.Context, regions []RawTextRegion, lang string) (rank.LookupResult, error) {
	ordered := make([]RawTextRegion, len(regions))
	copy(ordered, regions)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].SourceOrder < ordered[j].SourceOrder
	})

	var corrections []textproc.CorrectionResult
	for _, region := range ordered {
		normalized := textproc.Normalize(region.Text, lang)
		if normalized.Empty() {
			p.log.Debugw("region empty after normalization", "text", region.Text)
			continue
		}
		corrections = append(corrections, p.corrector.Correct(normalized))
	}

	if len(corrections) == 0 {
		p.log.Debugw("no usable text on spine, skipping lookup")
		return rank.LookupResult{}, nil
	}

	queries := p.builder.Build(corrections, lang)
	if len(queries) == 0 {
		return rank.LookupResult{}, nil
	}

	joined := textproc.JoinResults(corrections)

	looked, err := p.orch.Lookup(ctx, queries, joined.Corrected)
	if err != nil {
		return rank.LookupResult{}, err
	}

	cands := make([]rank.Candidate, 0, len(looked.Candidates))
	for _, c := range looked.Candidates {
		cands = append(cands, rank.Candidate{Record: c.Record, Priority: c.Priority})
	}

	result := p.ranker.Rank(cands, joined, looked.Query, looked.Attempted)

	p.log.Infow("spine identified",
		"state", looked.State.String(),
		"sources", looked.Attempted,
		"found", result.Best != nil)

	return result, nil
}

// IdentifyAll processes independent spines in parallel. The result slice is
// index-aligned with the input; the first error (typically cancellation) is
// returned after all goroutines finish.
func (p *Pipeline) IdentifyAll(ctx context.Context, spines [][]RawTextRegion, lang string) ([]rank.LookupResult, error) {
	results := make([]rank.LookupResult, len(spines))
	errs := make([]error, len(spines))

	var wg sync.WaitGroup
	for i, regions := range spines {
		wg.Add(1)
		go func(i int, regions []RawTextRegion) {
			defer wg.Done()
			results[i], errs[i] = p.Identify(ctx, regions, lang)
		}(i, regions)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return results, err
		}
	}
	return results, nil
}
