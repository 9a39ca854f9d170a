package engine

import (
	"github.com/lithammer/fuzzysearch/fuzzy"

	"legacymig/pkg/schema"
)

// nearMissThreshold is the similarity above which an unknown name is
// reported as a probable misspelling of a canonical one.
const nearMissThreshold = 0.85

// similarity is 1 minus the edit distance over the longer rune length.
func similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	longest := max(len([]rune(a)), len([]rune(b)))
	if longest == 0 {
		return 1.0
	}
	return 1.0 - float64(fuzzy.LevenshteinDistance(a, b))/float64(longest)
}

// closestName returns the candidate most similar to name after folding, and
// its score. Ties keep the earlier candidate.
func closestName(name string, candidates []string) (string, float64) {
	key := schema.FoldKey(name)
	best, bestScore := "", 0.0
	for _, c := range candidates {
		if s := similarity(key, schema.FoldKey(c)); s > bestScore {
			best, bestScore = c, s
		}
	}
	return best, bestScore
}
