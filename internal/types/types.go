// Package types provides type definitions for structured data used throughout the learntube system.
package types

import (
	"fmt"
	"time"
)

// Difficulty is the coarse difficulty label assigned to a video by enrichment.
type Difficulty string

// Difficulty levels recognized by the classifier and the recommendation filters.
const (
	DifficultyBeginner     Difficulty = "Beginner"
	DifficultyIntermediate Difficulty = "Intermediate"
	DifficultyAdvanced     Difficulty = "Advanced"
)

// ParseDifficulty converts a string into a Difficulty, rejecting unknown labels.
func ParseDifficulty(s string) (Difficulty, error) {
	switch Difficulty(s) {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
		return Difficulty(s), nil
	default:
		return "", fmt.Errorf("unknown difficulty %q (must be Beginner, Intermediate or Advanced)", s)
	}
}

// FeedbackType is the kind of feedback a user can leave on a recommendation.
type FeedbackType string

// Feedback types accepted by the feedback endpoint. No other values are valid.
const (
	FeedbackHelpful    FeedbackType = "helpful"
	FeedbackNotHelpful FeedbackType = "not_helpful"
	FeedbackTooEasy    FeedbackType = "too_easy"
	FeedbackTooHard    FeedbackType = "too_hard"
)

// ParseFeedbackType converts a string into a FeedbackType, rejecting unknown values.
func ParseFeedbackType(s string) (FeedbackType, error) {
	switch FeedbackType(s) {
	case FeedbackHelpful, FeedbackNotHelpful, FeedbackTooEasy, FeedbackTooHard:
		return FeedbackType(s), nil
	default:
		return "", fmt.Errorf("unknown feedback_type %q (must be helpful, not_helpful, too_easy or too_hard)", s)
	}
}

// FeedbackEvent is a single immutable feedback record left by a user on a video.
type FeedbackEvent struct {
	UserID    string       `json:"user_id"`
	VideoID   string       `json:"video_id"`
	Type      FeedbackType `json:"feedback_type"`
	CreatedAt time.Time    `json:"created_at"`
}

// FilterParameters are the active filters for a single recommendation request.
//// They are request-scoped: the feedback aggregator may adjust them in flight,
// but nothing persists them.
type FilterParameters struct {
	// DifficultyFilter restricts candidates to one difficulty level. Nil means no constraint.
	DifficultyFilter *Difficulty
	// MinSentiment is the sentiment floor in [0, 1]. Candidates with a known
	// sentiment below it are rejected.
	MinSentiment float64
	// SimilarityThreshold is the minimum similarity in [0, 1] for acceptance.
	SimilarityThreshold float64
}

// CandidateRecord is a single similarity-search result row, as returned by the
// vector search collaborator. Optional fields are pointers: the search index
// may not carry a similarity, difficulty or sentiment for every video.
type CandidateRecord struct {
	VideoID        string      `json:"video_id"`
	Similarity     *float64    `json:"similarity,omitempty"`
	Difficulty     *Difficulty `json:"difficulty,omitempty"`
	SentimentScore *float64    `json:"sentiment_score,omitempty"`
	TopicTags      []string    `json:"topics,omitempty"`
}

// SimilarityOrZero returns the similarity score, treating an absent value as 0.0.
func (c CandidateRecord) SimilarityOrZero() float64 {
	if c.Similarity == nil {
		return 0.0
	}
	return *c.Similarity
}

// ClassifiedCandidate is a CandidateRecord annotated with the classifier verdict.
// It is a copy of the input record; classification never mutates its input.
type ClassifiedCandidate struct {
	CandidateRecord
	Accepted        bool    `json:"accepted"`
	RejectionReason *string `json:"rejection_reason,omitempty"`
}

// ClassificationResult partitions a candidate list into accepted and rejected
// sequences. Both preserve the relative order of the input (stable partition),
// and every input candidate appears in exactly one of the two.
type ClassificationResult struct {
	Accepted []ClassifiedCandidate `json:"accepted"`
	Rejected []ClassifiedCandidate `json:"rejected"`
}

// VideoRecord is the stored metadata for a single ingested video.
type VideoRecord struct {
	VideoID              string      `json:"video_id"`
	Title                string      `json:"title"`
	Description          string      `json:"description"`
	ChannelTitle         string      `json:"channel_title,omitempty"`
	PublishedAt          *time.Time  `json:"published_at,omitempty"`
	DurationSeconds      int         `json:"duration_seconds"`
	ViewCount            int64       `json:"view_count"`
	LikeCount            int64       `json:"like_count"`
	TopicsSource         []string    `json:"topics_source,omitempty"`
	Difficulty           *Difficulty `json:"difficulty,omitempty"`
	DifficultyConfidence *float64    `json:"difficulty_confidence,omitempty"`
	TopicTags            []string    `json:"topic_tags,omitempty"`
	SentimentScore       *float64    `json:"sentiment_score,omitempty"`
	CommentCountAnalyzed int         `json:"comment_count_analyzed"`
}

// UserProfile holds the onboarding profile for a user.
type UserProfile struct {
	UserID        string   `json:"user_id"`
	Goals         []string `json:"goals"`
	MainObjective string   `json:"main_objective"`
	WeeklyTime    string   `json:"weekly_time"`
}

// UserPreferences holds the onboarding preferences for a user.
type UserPreferences struct {
	UserID               string   `json:"user_id"`
	SkillLevels          []string `json:"skill_levels"`
	PreferredVideoLength string   `json:"preferred_video_length"`
	LearningStyle        string   `json:"learning_style"`
	DifficultyPreference string   `json:"difficulty_preference"`
}

// TokenUsage reports token accounting for a single LLM call.
type TokenUsage struct {
	PromptTokens     int32 `json:"prompt_tokens"`
	CompletionTokens int32 `json:"completion_tokens"`
	TotalTokens      int32 `json:"total_tokens"`
}

// RecommendationMeta carries the filter values that were in effect when a
// candidate was recommended, for inclusion in explanation context.
type RecommendationMeta struct {
	Similarity       *float64    `json:"similarity,omitempty"`
	MinSentiment     float64     `json:"min_sentiment"`
	DifficultyFilter *Difficulty `json:"difficulty_filter,omitempty"`
}

/// ExplanationContext is the full payload handed to the explanation generator:
// everything the model is allowed to reference when explaining a recommendation.
type ExplanationContext struct {
	UserID         string             `json:"user_id"`
	Profile        UserProfile        `json:"profile"`
	Preferences    UserPreferences    `json:"preferences"`
	Video          VideoRecord        `json:"video"`
	Recommendation RecommendationMeta `json:"recommendation"`
}

// ExplanationResult is the output of one explanation generation.
type ExplanationResult struct {
	Explanation string     `json:"explanation"`
	Usage       TokenUsage `json:"usage"`
}

// ExplainedCandidate pairs an accepted candidate with its generated explanation.
type ExplainedCandidate struct {
	VideoID        string      `json:"video_id"`
	Similarity     *float64    `json:"similarity,omitempty"`
	Difficulty     *Difficulty `json:"difficulty,omitempty"`
	SentimentScore *float64    `json:"sentiment_score,omitempty"`
	TopicTags      []string    `json:"topic_tags,omitempty"`
	Explanation    string      `json:"explanation"`
	Usage          TokenUsage  `json:"usage"`
}
