// Package lookup runs the per-spine multi-source search: sources in
// priority order, queries in priority order per source, with fallback on
// error or empty results.
package lookup

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"spinelookup/internal/query"
	"spinelookup/internal/sources"
	"spinelookup/internal/textproc"
)

// State tracks the lookup state machine for one spine.
type State int

const (
	StatePending State = iota
	StateQuerying
	StateSucceeded
	StateExhausted
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateQuerying:
		return "querying"
	case StateSucceeded:
		return "succeeded"
	case StateExhausted:
		return "exhausted"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Config tunes the orchestration.
type Config struct {
	// MaxSources caps the sources that contributed hits, not the sources
	// tried: empty or failing sources never count against it, so fallback
	// always reaches the sources further down the priority list.
	MaxSources int
	// MaxRecords caps the total gathered candidates.
	MaxRecords int

	SourceTimeout   time.Duration
	StopOnValidated bool
	MinValidScore   float64
}

// Candidate is a gathered record tagged with the priority rank of the
// source that produced it, so merging stays deterministic regardless of how
// the sources were queried.
type Candidate struct {
	Record   sources.BookRecord
	Priority int
}

// Attempt records one source/query combination and its outcome, forming the
// ordered attempt list that feeds the single merge step.
type Attempt struct {
	Source  string
	Query   query.Query
	Records int
	Err     error
}

// Result is the raw orchestration outcome before ranking.
type Result struct {
	Candidates []Candidate
	Attempted  []string
	Attempts   []Attempt
	Query      query.Query
	State      State
}

// Orchestrator queries an ordered list of sources. It is stateless across
// calls; all per-spine state lives in the Result.
type Orchestrator struct {
	srcs []sources.Source
	cfg  Config
	log  *zap.SugaredLogger
}

func New(srcs []sources.Source, cfg Config, log *zap.SugaredLogger) *Orchestrator {
	return &Orchestrator{srcs: srcs, cfg: cfg, log: log}
}

// Lookup tries every source in priority order. Per source, queries are
// attempted in order until one returns hits or all are exhausted; errors and
// timeouts are logged and treated as empty results. Gathering continues past
// the first hit, because a later source may validate better than an earlier
// wrong match, and stops once MaxSources sources contributed or MaxRecords
// candidates are gathered. reference is the corrected spine text, used only
// by the StopOnValidated policy. A cancelled context aborts with the
// context's error and no partial result.
func (o *Orchestrator) Lookup(ctx context.Context, queries []query.Query, reference string) (Result, error) {
	res := Result{State: StatePending}
	if len(queries) == 0 {
		res.State = StateExhausted
		return res, nil
	}

	hitSources := 0

	for priority, src := range o.srcs {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		res.State = StateQuerying
		res.Attempted = append(res.Attempted, src.Name())

		for _, q := range queries {
			if !src.Supports(q.Role) {
				continue
			}
			if err := ctx.Err(); err != nil {
				return Result{}, err
			}

			records, err := o.searchOne(ctx, src, q)
			res.Attempts = append(res.Attempts, Attempt{
				Source:  src.Name(),
				Query:   q,
				Records: len(records),
				Err:     err,
			})

			if err != nil {
				if ctx.Err() != nil {
					return Result{}, ctx.Err()
				}
				o.log.Warnw("source failed, falling back",
					"source", src.Name(),
					"query", q.Text,
					"role", q.Role.String(),
					"error", err)
				continue
			}
			if len(records) == 0 {
				continue
			}

			if res.Query.Text == "" {
				res.Query = q
			}
			for _, rec := range records {
				if len(res.Candidates) >= o.cfg.MaxRecords {
					break
				}
				res.Candidates = append(res.Candidates, Candidate{Record: rec, Priority: priority})
			}
			hitSources++
			break
		}

		if hitSources >= o.cfg.MaxSources || len(res.Candidates) >= o.cfg.MaxRecords {
			break
		}
		if o.cfg.StopOnValidated && o.anyValidated(res.Candidates, reference, queries[0].Language) {
			o.log.Debugw("stopping early on validated candidate")
			break
		}
	}

	if len(res.Candidates) > 0 {
		res.State = StateSucceeded
	} else {
		res.State = StateExhausted
		if len(queries) > 0 {
			res.Query = queries[0]
		}
	}

	return res, nil
}

func (o *Orchestrator) searchOne(ctx context.Context, src sources.Source, q query.Query) ([]sources.BookRecord, error) {
	sctx := ctx
	if o.cfg.SourceTimeout > 0 {
		var cancel context.CancelFunc
		sctx, cancel = context.WithTimeout(ctx, o.cfg.SourceTimeout)
		defer cancel()
	}

	return src.Search(sctx, q)
}

func (o *Orchestrator) anyValidated(cands []Candidate, reference, lang string) bool {
	for _, c := range cands {
		normalized := textproc.NormalizeTitle(c.Record.Title, lang)
		if textproc.Similarity(normalized, reference) >= o.cfg.MinValidScore {
			return true
		}
	}
	return false
}
