package recommend

import "github.com/jonathan/learntube/internal/types"

// DefaultExplainTop bounds the cost of per-candidate explanation generation
// for the public recommend endpoint.
const DefaultExplainTop = 3

// SelectForExplanation caps the accepted set before the expensive explanation
// stage. A non-negative explainTop returns the first min(explainTop,
// len(accepted)) candidates in order; the classifier already preserved the
// search engine's similarity-descending order, so the prefix is the top of
// the ranking. Any negative explainTop is the "no cap" sentinel used by
// batch/administrative callers and returns the accepted sequence unchanged.
func SelectForExplanation(accepted []types.ClassifiedCandidate, explainTop int) []types.ClassifiedCandidate {
	if explainTop < 0 {
		return accepted
	}
	if explainTop > len(accepted) {
		explainTop = len(accepted)
	}
	return accepted[:explainTop]
}
