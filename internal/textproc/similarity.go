package textproc

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// containmentScore is the similarity credited when one string contains the
// other and the lengths are comparable. Substring hits are strong evidence
// but not as strong as a near-exact match.
const containmentScore = 0.75

// Similarity returns a normalized string similarity in [0,1]. Equal strings
// score 1; one string containing the other with a length ratio within
// [0.5,2] scores a fixed containment value; everything else uses the
// Levenshtein distance divided by the longer length.
func Similarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}

	lenA, lenB := len(a), len(b)
	ratio := float64(lenA) / float64(lenB)

	if (strings.Contains(a, b) || strings.Contains(b, a)) && ratio >= 0.5 && ratio <= 2 {
		return containmentScore
	}

	max := lenA
	if lenB > max {
		max = lenB
	}

	dist := levenshtein.ComputeDistance(a, b)
	sim := 1 - float64(dist)/float64(max)
	if sim < 0 {
		return 0
	}
	return sim
}
