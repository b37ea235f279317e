// Package recommend implements the recommendation ranking and adaptive
// filtering pipeline: feedback-driven preference adjustment, candidate
// classification, explanation-candidate selection and the orchestration that
// ties them to external collaborators.
package recommend

import "github.com/jonathan/learntube/internal/types"

// FeedbackCounts maps a feedback type to how many times the user submitted it.
// Absent types count as zero.
type FeedbackCounts map[types.FeedbackType]int

// Count returns the count for a feedback type, defaulting to zero.
func (fc FeedbackCounts) Count(t types.FeedbackType) int {
	return fc[t]
}

// sentimentStep is how far one feedback imbalance shifts the sentiment floor.
const sentimentStep = 0.05

// AdjustPreferences applies rule-based filter adjustments derived from a
// user's feedback history.
//
// Difficulty: only filled in when the caller did not supply a filter. A
// majority of too_easy biases toward Advanced, a majority of too_hard toward
// Beginner. A tie (including 0=0) leaves it unset. A caller-supplied filter
// is never overridden.
//
// Sentiment: always adjusted. A majority of helpful lowers the floor by 0.05
// (never below 0.0); a majority of not_helpful raises it by 0.05 (never above
// 1.0). A tie leaves it unchanged.
//
// The function is pure; fail-open handling for an unavailable feedback store
// lives in the orchestrator, which simply skips the call.
func AdjustPreferences(counts FeedbackCounts, difficultyFilter *types.Difficulty, minSentiment float64) (*types.Difficulty, float64) {
	tooEasy := counts.Count(types.FeedbackTooEasy)
	tooHard := counts.Count(types.FeedbackTooHard)
	helpful := counts.Count(types.FeedbackHelpful)
	notHelpful := counts.Count(types.FeedbackNotHelpful)

	if difficultyFilter == nil {
		switch {
		case tooEasy > tooHard:
			advanced := types.DifficultyAdvanced
			difficultyFilter = &advanced
		case tooHard > tooEasy:
			beginner := types.DifficultyBeginner
			difficultyFilter = &beginner
		}
	}

	switch {
	case helpful > notHelpful:
		minSentiment = max(0.0, minSentiment-sentimentStep)
	case notHelpful > helpful:
		minSentiment = min(1.0, minSentiment+sentimentStep)
	}

	return difficultyFilter, minSentiment
}
