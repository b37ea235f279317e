package server

import (
	"encoding/json"
	"net/http"

	"github.com/jonathan/learntube/internal/types"
)

// handleIngestYouTube runs one ingestion batch. With refresh set it runs the
// full refresh workflow instead.
func (s *Server) handleIngestYouTube(w http.ResponseWriter, r *http.Request) {
	var req types.IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, extractValidationErrors(err))
		return
	}

	if req.Refresh {
		summary, err := s.ingest.RefreshWorkflow(r.Context(), req)
		if err != nil {
			s.errorResponse(w, HTTPStatus(err), err.Error())
			return
		}
		s.jsonResponse(w, http.StatusOK, summary)
		return
	}

	resp, err := s.ingest.IngestFromYouTube(r.Context(), req)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

// handleEnrichVideo annotates one video with NLP signals.
func (s *Server) handleEnrichVideo(w http.ResponseWriter, r *http.Request) {
	videoID := r.PathValue("id")

	result, err := s.ingest.EnrichVideo(r.Context(), videoID)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, result)
}

// handleEmbedVideo recomputes and stores the embedding for one video.
func (s *Server) handleEmbedVideo(w http.ResponseWriter, r *http.Request) {
	videoID := r.PathValue("id")

	video, err := s.store.GetVideo(r.Context(), videoID)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	if video == nil {
		s.errorResponse(w, http.StatusNotFound, "video not found: "+videoID)
		return
	}

	embedding, err := s.embedder.EmbedVideo(r.Context(), *video)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"video_id":       videoID,
		"embedding_dims": len(embedding),
	})
}

// handleEmbedUser recomputes and stores the embedding for one user from
// their stored onboarding data.
func (s *Server) handleEmbedUser(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")

	profile, err := s.store.GetProfile(r.Context(), userID)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	prefs, err := s.store.GetPreferences(r.Context(), userID)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	if profile == nil && prefs == nil {
		s.errorResponse(w, http.StatusNotFound, "no onboarding data for user: "+userID)
		return
	}

	if profile == nil {
		profile = &types.UserProfile{UserID: userID}
	}
	if prefs == nil {
		prefs = &types.UserPreferences{UserID: userID}
	}

	embedding, err := s.embedder.EmbedUser(r.Context(), userID, *profile, *prefs)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"user_id":        userID,
		"embedding_dims": len(embedding),
	})
}

// handleWorkflowRefresh runs the full refresh workflow: prune stale content,
// ingest fresh videos, enrich anything missing signals.
func (s *Server) handleWorkflowRefresh(w http.ResponseWriter, r *http.Request) {
	var req types.IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, extractValidationErrors(err))
		return
	}

	summary, err := s.ingest.RefreshWorkflow(r.Context(), req)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, summary)
}
