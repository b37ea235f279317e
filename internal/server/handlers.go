package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/learntube/internal/config"
	"github.com/jonathan/learntube/internal/recommend"
	"github.com/jonathan/learntube/internal/types"
)

var validate = validator.New()

const (
	// maxSearchLimit caps the vector search result count per request.
	maxSearchLimit = 50
	// maxExplainTop caps per-request explanation generation.
	maxExplainTop = 20
)

// defaults returns the recommendation defaults, falling back to the baseline
// when the server was constructed without a config.
func (s *Server) defaults() config.Config {
	if s.cfg != nil {
		return *s.cfg
	}
	return config.Defaults()
}

// handleSubmitFeedback records one feedback event for a (user, video) pair.
func (s *Server) handleSubmitFeedback(w http.ResponseWriter, r *http.Request) {
	var req types.FeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, extractValidationErrors(err))
		return
	}

	feedbackType, err := types.ParseFeedbackType(req.FeedbackType)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	event := types.FeedbackEvent{
		UserID:  req.UserID,
		VideoID: req.VideoID,
		Type:    feedbackType,
	}
	if err := s.store.InsertFeedback(r.Context(), event); err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	s.jsonResponse(w, http.StatusCreated, map[string]string{
		"status":   "recorded",
		"user_id":  req.UserID,
		"video_id": req.VideoID,
	})
}

// handleFeedbackTuning previews how a user's feedback history would adjust
// the default filters, without running a recommendation.
func (s *Server) handleFeedbackTuning(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("user_id")

	counts, err := s.store.CountsByType(r.Context(), userID)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	defaults := s.defaults()
	difficulty, minSentiment := recommend.AdjustPreferences(counts, nil, defaults.MinSentiment)

	response := map[string]any{
		"user_id":                userID,
		"feedback_counts":        counts,
		"adjusted_min_sentiment": minSentiment,
	}
	if difficulty != nil {
		response["adjusted_difficulty"] = *difficulty
	}
	s.jsonResponse(w, http.StatusOK, response)
}

// handleOnboarding stores a user's profile and preferences, then computes
// their embedding so recommendations work immediately.
func (s *Server) handleOnboarding(w http.ResponseWriter, r *http.Request) {
	var req types.OnboardingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, extractValidationErrors(err))
		return
	}

	profile := types.UserProfile{
		UserID:        req.UserID,
		Goals:         req.Profile.Goals,
		MainObjective: req.Profile.MainObjective,
		WeeklyTime:    req.Profile.WeeklyTime,
	}
	prefs := types.UserPreferences{
		UserID:               req.UserID,
		SkillLevels:          req.Preferences.SkillLevels,
		PreferredVideoLength: req.Preferences.PreferredVideoLength,
		LearningStyle:        req.Preferences.LearningStyle,
		DifficultyPreference: req.Preferences.DifficultyPreference,
	}

	if err := s.store.UpsertProfile(r.Context(), profile); err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	if err := s.store.UpsertPreferences(r.Context(), prefs); err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	embedding, err := s.embedder.EmbedUser(r.Context(), req.UserID, profile, prefs)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	s.jsonResponse(w, http.StatusCreated, map[string]any{
		"user_id":        req.UserID,
		"status":         "onboarded",
		"embedding_dims": len(embedding),
	})
}

// handleRecommendations runs the filtering pipeline without explanations.
func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	params, err := s.recommendParams(r)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.recommender.Recommend(r.Context(), params)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, result)
}

// recommendParams builds pipeline parameters from path and query values.
func (s *Server) recommendParams(r *http.Request) (recommend.Params, error) {
	defaults := s.defaults()
	params := recommend.Params{
		UserID:              r.PathValue("user_id"),
		Limit:               defaults.SearchLimit,
		MinSentiment:        defaults.MinSentiment,
		SimilarityThreshold: defaults.SimilarityThreshold,
		ExplainTop:          defaults.ExplainTop,
	}

	q := r.URL.Query()
	var err error
	if params.Limit, err = intParam(q.Get("limit"), params.Limit); err != nil {
		return params, fmt.Errorf("invalid limit: %w", err)
	}
	if params.MinSentiment, err = floatParam(q.Get("min_sentiment"), params.MinSentiment); err != nil {
		return params, fmt.Errorf("invalid min_sentiment: %w", err)
	}
	if params.SimilarityThreshold, err = floatParam(q.Get("similarity_threshold"), params.SimilarityThreshold); err != nil {
		return params, fmt.Errorf("invalid similarity_threshold: %w", err)
	}
	if params.ExplainTop, err = intParam(q.Get("explain_top"), params.ExplainTop); err != nil {
		return params, fmt.Errorf("invalid explain_top: %w", err)
	}
	// Reasons are attached unless explicitly disabled.
	params.IncludeReasons = q.Get("include_reasons") != "false"

	if raw := q.Get("difficulty"); raw != "" {
		difficulty, err := types.ParseDifficulty(raw)
		if err != nil {
			return params, err
		}
		params.DifficultyFilter = &difficulty
	}
	return params, validateRecommendParams(params)
}

// validateRecommendParams enforces the request-level ranges shared by the
// query and body recommendation surfaces.
func validateRecommendParams(p recommend.Params) error {
	if p.Limit < 1 || p.Limit > maxSearchLimit {
		return fmt.Errorf("limit must be between 1 and %d", maxSearchLimit)
	}
	if p.MinSentiment < 0 || p.MinSentiment > 1 {
		return fmt.Errorf("min_sentiment must be in [0, 1]")
	}
	if p.SimilarityThreshold < 0 || p.SimilarityThreshold > 1 {
		return fmt.Errorf("similarity_threshold must be in [0, 1]")
	}
	if p.ExplainTop > maxExplainTop {
		return fmt.Errorf("explain_top must be at most %d (negative disables the cap)", maxExplainTop)
	}
	return nil
}

func intParam(raw string, fallback int) (int, error) {
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}

func floatParam(raw string, fallback float64) (float64, error) {
	if raw == "" {
		return fallback, nil
	}
	return strconv.ParseFloat(raw, 64)
}
