package server

import (
	"encoding/json"
	"net/http"

	"github.com/jonathan/learntube/internal/recommend"
	"github.com/jonathan/learntube/internal/types"
)

// explainRecommendationsRequest is the body of a recommend-and-explain call.
// Optional fields are pointers so zero values can be told apart from omissions.
type explainRecommendationsRequest struct {
	UserID              string   `json:"user_id" validate:"required"`
	Limit               *int     `json:"limit"`
	MinSentiment        *float64 `json:"min_sentiment"`
	SimilarityThreshold *float64 `json:"similarity_threshold"`
	Difficulty          string   `json:"difficulty"`
	ExplainTop          *int     `json:"explain_top"`
	IncludeReasons      *bool    `json:"include_reasons"`
}

// handleExplainRecommendations runs the pipeline and generates explanations
// for the top accepted candidates.
func (s *Server) handleExplainRecommendations(w http.ResponseWriter, r *http.Request) {
	var req explainRecommendationsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, extractValidationErrors(err))
		return
	}

	defaults := s.defaults()
	params := recommend.Params{
		UserID:              req.UserID,
		Limit:               defaults.SearchLimit,
		MinSentiment:        defaults.MinSentiment,
		SimilarityThreshold: defaults.SimilarityThreshold,
		ExplainTop:          defaults.ExplainTop,
		IncludeReasons:      true,
	}
	if req.IncludeReasons != nil {
		params.IncludeReasons = *req.IncludeReasons
	}
	if req.Limit != nil {
		params.Limit = *req.Limit
	}
	if req.MinSentiment != nil {
		params.MinSentiment = *req.MinSentiment
	}
	if req.SimilarityThreshold != nil {
		params.SimilarityThreshold = *req.SimilarityThreshold
	}
	if req.ExplainTop != nil {
		params.ExplainTop = *req.ExplainTop
	}
	if req.Difficulty != "" {
		difficulty, err := types.ParseDifficulty(req.Difficulty)
		if err != nil {
			s.errorResponse(w, http.StatusBadRequest, err.Error())
			return
		}
		params.DifficultyFilter = &difficulty
	}
	if err := validateRecommendParams(params); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.recommender.RecommendWithExplanations(r.Context(), params)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, result)
}

// explainVideoRequest asks for an explanation of one specific video.
type explainVideoRequest struct {
	UserID     string   `json:"user_id" validate:"required"`
	VideoID    string   `json:"video_id" validate:"required"`
	Similarity *float64 `json:"similarity"`
}

// handleExplainVideo explains a single (user, video) pair outside the
// search pipeline.
func (s *Server) handleExplainVideo(w http.ResponseWriter, r *http.Request) {
	var req explainVideoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, extractValidationErrors(err))
		return
	}

	meta := types.RecommendationMeta{
		Similarity:   req.Similarity,
		MinSentiment: s.defaults().MinSentiment,
	}
	result, err := s.recommender.ExplainVideo(r.Context(), req.UserID, req.VideoID, meta)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"user_id":     req.UserID,
		"video_id":    req.VideoID,
		"explanation": result.Explanation,
		"usage":       result.Usage,
	})
}

// explainBatchRequest asks for explanations of several videos for one user.
type explainBatchRequest struct {
	UserID   string   `json:"user_id" validate:"required"`
	VideoIDs []string `json:"video_ids" validate:"required,min=1,max=20"`
}

// handleExplainBatch explains each requested video in order. Any failure
// aborts the whole batch.
func (s *Server) handleExplainBatch(w http.ResponseWriter, r *http.Request) {
	var req explainBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, extractValidationErrors(err))
		return
	}

	meta := types.RecommendationMeta{MinSentiment: s.defaults().MinSentiment}
	explanations := make([]map[string]any, 0, len(req.VideoIDs))
	for _, videoID := range req.VideoIDs {
		result, err := s.recommender.ExplainVideo(r.Context(), req.UserID, videoID, meta)
		if err != nil {
			s.errorResponse(w, HTTPStatus(err), err.Error())
			return
		}
		explanations = append(explanations, map[string]any{
			"video_id":    videoID,
			"explanation": result.Explanation,
			"usage":       result.Usage,
		})
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"user_id":      req.UserID,
		"explanations": explanations,
	})
}
