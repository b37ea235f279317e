package recommend

import (
	"strings"

	"github.com/jonathan/learntube/internal/types"
)

// Rejection reason strings, reported in this fixed order when multiple
// predicates fail for the same candidate.
const (
	ReasonSimilarityTooLow        = "similarity too low"
	ReasonDifficultyMismatch      = "difficulty mismatch"
	ReasonSentimentBelowThreshold = "sentiment below threshold"
)

// Classify partitions search candidates into accepted and rejected sets.
//
// Each candidate is checked against three independent predicates, all
// evaluated against the caller-supplied filter values (never against each
// other, and never short-circuited), so a rejection reports every applicable
// reason:
//
//   - similarity (absent treated as 0.0) below filters.SimilarityThreshold
//   - filters.DifficultyFilter set and candidate difficulty differs
//   - sentiment present and below filters.MinSentiment
//
// The partition is stable: both output sequences preserve the input order, so
// downstream top-N selection reflects the search engine's own ranking. Input
// records are copied, never mutated.
func Classify(candidates []types.CandidateRecord, filters types.FilterParameters, includeReasons bool) types.ClassificationResult {
	result := types.ClassificationResult{
		Accepted: []types.ClassifiedCandidate{},
		Rejected: []types.ClassifiedCandidate{},
	}

	for _, record := range candidates {
		var reasons []string
		if record.SimilarityOrZero() < filters.SimilarityThreshold {
			reasons = append(reasons, ReasonSimilarityTooLow)
		}
		if filters.DifficultyFilter != nil && (record.Difficulty == nil || *record.Difficulty != *filters.DifficultyFilter) {
			reasons = append(reasons, ReasonDifficultyMismatch)
		}
		if record.SentimentScore != nil && *record.SentimentScore < filters.MinSentiment {
			reasons = append(reasons, ReasonSentimentBelowThreshold)
		}

		if len(reasons) == 0 {
			result.Accepted = append(result.Accepted, types.ClassifiedCandidate{
				CandidateRecord: record,
				Accepted:        true,
			})
			continue
		}

		rejected := types.ClassifiedCandidate{
			CandidateRecord: record,
			Accepted:        false,
		}
		if includeReasons {
			reason := strings.Join(reasons, "; ")
			rejected.RejectionReason = &reason
		}
		result.Rejected = append(result.Rejected, rejected)
	}

	return result
}
