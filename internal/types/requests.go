package types

// FeedbackRequest is the body of a submit-feedback call. FeedbackType is
// validated strictly: anything outside the four known values is a client error.
type FeedbackRequest struct {
	UserID       string `json:"user_id" validate:"required"`
	VideoID      string `json:"video_id" validate:"required"`
	FeedbackType string `json:"feedback_type" validate:"required,oneof=helpful not_helpful too_easy too_hard"`
}

// OnboardingRequest persists a user's profile and preferences in one call.
type OnboardingRequest struct {
	UserID      string            `json:"user_id" validate:"required"`
	Profile     OnboardingProfile `json:"user_profiles" validate:"required"`
	Preferences OnboardingPrefs   `json:"user_preferences" validate:"required"`
}

// OnboardingProfile is the profile portion of an onboarding request.
type OnboardingProfile struct {
	Goals         []string `json:"goals"`
	MainObjective string   `json:"main_objective" validate:"required"`
	WeeklyTime    string   `json:"weekly_time" validate:"required"`
}

// OnboardingPrefs is the preferences portion of an onboarding request.
type OnboardingPrefs struct {
	SkillLevels          []string `json:"skill_levels"`
	PreferredVideoLength string   `json:"preferred_video_length" validate:"required"`
	LearningStyle        string   `json:"learning_style" validate:"required"`
	DifficultyPreference string   `json:"difficulty_preference" validate:"required"`
}

// IngestRequest describes one YouTube ingestion batch.
type IngestRequest struct {
	Topics             []string `json:"topics" validate:"required,min=1"`
	MaxResultsPerTopic int      `json:"max_results_per_topic" validate:"omitempty,min=1,max=20"`
	MinViewCount       int64    `json:"min_view_count" validate:"omitempty,min=0"`
	MaxAgeDays         int      `json:"max_age_days" validate:"omitempty,min=1"`
	Refresh            bool     `json:"refresh"`
	Order              string   `json:"order" validate:"omitempty,oneof=relevance date"`
	ExcludeKeywords    []string `json:"exclude_keywords"`
}

// IngestResponse summarizes one ingestion batch.
type IngestResponse struct {
	Inserted  int      `json:"inserted"`
	Attempted int      `json:"attempted"`
	Skipped   int      `json:"skipped"`
	Topics    []string `json:"topics"`
	VideoIDs  []string `json:"video_ids"`
}

// EnrichmentResult reports the NLP signals attached to a video by enrichment.
type EnrichmentResult struct {
	VideoID              string   `json:"video_id"`
	Difficulty           string   `json:"difficulty"`
	DifficultyConfidence float64  `json:"difficulty_confidence"`
	SentimentScore       *float64 `json:"sentiment_score"`
	CommentCountAnalyzed int      `json:"comment_count_analyzed"`
	TopicTags            []string `json:"topic_tags"`
}

// DefaultExcludeKeywords filters out non-educational video noise during ingestion.
func DefaultExcludeKeywords() []string {
	return []string{"trailer", "official music video", "lyrics", "remix", "promo"}
}
