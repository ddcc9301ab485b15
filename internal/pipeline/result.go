package pipeline

import "spinelookup/internal/rank"

// Result is the serializable form of one spine's identification handed to
// the presentation/storage stage.
type Result struct {
	Found            bool          `json:"found"`
	Title            string        `json:"title,omitempty"`
	Authors          []string      `json:"authors,omitempty"`
	Source           string        `json:"source,omitempty"`
	Confidence       float64       `json:"confidence"`
	Validated        bool          `json:"validated"`
	Alternatives     []Alternative `json:"alternatives,omitempty"`
	QueryUsed        string        `json:"query_used,omitempty"`
	AttemptedSources []string      `json:"attempted_sources,omitempty"`
}

// Alternative is a runner-up candidate.
type Alternative struct {
	Title      string   `json:"title"`
	Authors    []string `json:"authors,omitempty"`
	Source     string   `json:"source"`
	Confidence float64  `json:"confidence"`
}

// Serialize flattens a LookupResult into its wire form.
func Serialize(r rank.LookupResult) Result {
	out := Result{
		QueryUsed:        r.Query.Text,
		AttemptedSources: r.AttemptedSources,
	}

	if r.Best != nil {
		out.Found = true
		out.Title = r.Best.Record.Title
		out.Authors = r.Best.Record.Authors
		out.Source = r.Best.Record.Source
		out.Confidence = r.Best.MatchScore
		out.Validated = r.Best.Validated
	}

	for _, alt := range r.Alternatives {
		out.Alternatives = append(out.Alternatives, Alternative{
			Title:      alt.Record.Title,
			Authors:    alt.Record.Authors,
			Source:     alt.Record.Source,
			Confidence: alt.MatchScore,
		})
	}

	return out
}
