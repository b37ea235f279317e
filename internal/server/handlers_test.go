package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/learntube/internal/config"
	"github.com/jonathan/learntube/internal/ingest"
	"github.com/jonathan/learntube/internal/recommend"
	"github.com/jonathan/learntube/internal/types"
)

type fakeStore struct {
	feedback    []types.FeedbackEvent
	counts      recommend.FeedbackCounts
	countsErr   error
	profiles    map[string]*types.UserProfile
	preferences map[string]*types.UserPreferences
	videos      map[string]*types.VideoRecord
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		counts:      recommend.FeedbackCounts{},
		profiles:    map[string]*types.UserProfile{},
		preferences: map[string]*types.UserPreferences{},
		videos:      map[string]*types.VideoRecord{},
	}
}

func (f *fakeStore) InsertFeedback(_ context.Context, event types.FeedbackEvent) error {
	f.feedback = append(f.feedback, event)
	return nil
}

func (f *fakeStore) CountsByType(_ context.Context, _ string) (recommend.FeedbackCounts, error) {
	return f.counts, f.countsErr
}

func (f *fakeStore) UpsertProfile(_ context.Context, profile types.UserProfile) error {
	f.profiles[profile.UserID] = &profile
	return nil
}

func (f *fakeStore) UpsertPreferences(_ context.Context, prefs types.UserPreferences) error {
	f.preferences[prefs.UserID] = &prefs
	return nil
}

func (f *fakeStore) GetProfile(_ context.Context, userID string) (*types.UserProfile, error) {
	return f.profiles[userID], nil
}

func (f *fakeStore) GetPreferences(_ context.Context, userID string) (*types.UserPreferences, error) {
	return f.preferences[userID], nil
}

func (f *fakeStore) GetVideo(_ context.Context, videoID string) (*types.VideoRecord, error) {
	return f.videos[videoID], nil
}

type fakeRecommender struct {
	gotParams recommend.Params
	err       error
}

func (f *fakeRecommender) Recommend(_ context.Context, p recommend.Params) (*recommend.Recommendation, error) {
	f.gotParams = p
	if f.err != nil {
		return nil, f.err
	}
	return &recommend.Recommendation{UserID: p.UserID}, nil
}

func (f *fakeRecommender) RecommendWithExplanations(_ context.Context, p recommend.Params) (*recommend.ExplainedRecommendation, error) {
	f.gotParams = p
	if f.err != nil {
		return nil, f.err
	}
	return &recommend.ExplainedRecommendation{UserID: p.UserID}, nil
}

func (f *fakeRecommender) ExplainVideo(_ context.Context, userID, videoID string, _ types.RecommendationMeta) (*types.ExplanationResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &types.ExplanationResult{Explanation: "because " + userID + " likes " + videoID}, nil
}

type fakeIngestService struct {
	refreshed bool
}

func (f *fakeIngestService) IngestFromYouTube(_ context.Context, req types.IngestRequest) (*types.IngestResponse, error) {
	return &types.IngestResponse{Topics: req.Topics, Inserted: 1}, nil
}

func (f *fakeIngestService) EnrichVideo(_ context.Context, videoID string) (*types.EnrichmentResult, error) {
	if videoID == "missing" {
		return nil, &recommend.ErrVideoNotFound{VideoID: videoID}
	}
	return &types.EnrichmentResult{VideoID: videoID, Difficulty: "Beginner"}, nil
}

func (f *fakeIngestService) RefreshWorkflow(_ context.Context, req types.IngestRequest) (*ingest.RefreshSummary, error) {
	f.refreshed = true
	return &ingest.RefreshSummary{Deleted: 1}, nil
}

type fakeEmbedService struct {
	err error
}

func (f *fakeEmbedService) EmbedVideo(_ context.Context, _ types.VideoRecord) ([]float32, error) {
	return []float32{0.1, 0.2}, f.err
}

func (f *fakeEmbedService) EmbedUser(_ context.Context, _ string, _ types.UserProfile, _ types.UserPreferences) ([]float32, error) {
	return []float32{0.3}, f.err
}

func newTestServer(store *fakeStore, rec *fakeRecommender, ing *fakeIngestService, emb *fakeEmbedService) *Server {
	s := &Server{
		cfg:         &config.Config{SimilarityThreshold: 0.5, MinSentiment: 0.3, SearchLimit: 20, ExplainTop: 3},
		store:       store,
		recommender: rec,
		ingest:      ing,
		embedder:    emb,
		jwtService:  NewJWTService(&config.JWTConfig{Secret: "test-secret", ExpirationHours: 1}),
	}
	s.userService = newTestUserService(newFakeUserDB())
	s.authHandler = NewAuthHandler(s.userService, s.jwtService)
	return s
}

func newJSONRequest(method, target, body string) *http.Request {
	if body == "" {
		return httptest.NewRequest(method, target, nil)
	}
	return httptest.NewRequest(method, target, strings.NewReader(body))
}

func serve(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	s.routes().ServeHTTP(rr, req)
	return rr
}

func doRequest(s *Server, method, target, body string) *httptest.ResponseRecorder {
	return serve(s, newJSONRequest(method, target, body))
}

func TestSubmitFeedback(t *testing.T) {
	store := newFakeStore()
	s := newTestServer(store, &fakeRecommender{}, &fakeIngestService{}, &fakeEmbedService{})

	rr := doRequest(s, "POST", "/v1/feedback", `{"user_id": "u1", "video_id": "v1", "feedback_type": "too_hard"}`)

	assert.Equal(t, http.StatusCreated, rr.Code)
	require.Len(t, store.feedback, 1)
	assert.Equal(t, types.FeedbackTooHard, store.feedback[0].Type)
}

func TestSubmitFeedbackRejectsUnknownType(t *testing.T) {
	store := newFakeStore()
	s := newTestServer(store, &fakeRecommender{}, &fakeIngestService{}, &fakeEmbedService{})

	rr := doRequest(s, "POST", "/v1/feedback", `{"user_id": "u1", "video_id": "v1", "feedback_type": "meh"}`)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Empty(t, store.feedback)
}

func TestSubmitFeedbackRejectsMissingFields(t *testing.T) {
	s := newTestServer(newFakeStore(), &fakeRecommender{}, &fakeIngestService{}, &fakeEmbedService{})

	rr := doRequest(s, "POST", "/v1/feedback", `{"user_id": "u1"}`)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestFeedbackTuning(t *testing.T) {
	store := newFakeStore()
	store.counts = recommend.FeedbackCounts{
		types.FeedbackTooHard:    3,
		types.FeedbackNotHelpful: 2,
	}
	s := newTestServer(store, &fakeRecommender{}, &fakeIngestService{}, &fakeEmbedService{})

	rr := doRequest(s, "GET", "/v1/feedback/tuning/u1", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "Beginner", resp["adjusted_difficulty"])
	assert.InDelta(t, 0.35, resp["adjusted_min_sentiment"].(float64), 1e-9)
}

func TestOnboardingStoresAndEmbeds(t *testing.T) {
	store := newFakeStore()
	s := newTestServer(store, &fakeRecommender{}, &fakeIngestService{}, &fakeEmbedService{})

	body := `{
		"user_id": "u1",
		"user_profiles": {"goals": ["learn go"], "main_objective": "backend", "weekly_time": "5h"},
		"user_preferences": {"skill_levels": ["go: beginner"], "preferred_video_length": "short", "learning_style": "hands-on", "difficulty_preference": "Beginner"}
	}`
	rr := doRequest(s, "POST", "/v1/onboarding", body)

	require.Equal(t, http.StatusCreated, rr.Code)
	require.NotNil(t, store.profiles["u1"])
	assert.Equal(t, "backend", store.profiles["u1"].MainObjective)
	require.NotNil(t, store.preferences["u1"])
	assert.Equal(t, "hands-on", store.preferences["u1"].LearningStyle)
}

func TestOnboardingRejectsIncompleteProfile(t *testing.T) {
	s := newTestServer(newFakeStore(), &fakeRecommender{}, &fakeIngestService{}, &fakeEmbedService{})

	rr := doRequest(s, "POST", "/v1/onboarding", `{"user_id": "u1", "user_profiles": {}, "user_preferences": {}}`)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestRecommendationsUsesDefaults(t *testing.T) {
	rec := &fakeRecommender{}
	s := newTestServer(newFakeStore(), rec, &fakeIngestService{}, &fakeEmbedService{})

	rr := doRequest(s, "GET", "/v1/recommendations/u1", "")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "u1", rec.gotParams.UserID)
	assert.Equal(t, 20, rec.gotParams.Limit)
	assert.InDelta(t, 0.3, rec.gotParams.MinSentiment, 1e-9)
	assert.InDelta(t, 0.5, rec.gotParams.SimilarityThreshold, 1e-9)
	assert.Equal(t, 3, rec.gotParams.ExplainTop)
	assert.Nil(t, rec.gotParams.DifficultyFilter)
	assert.True(t, rec.gotParams.IncludeReasons)
}

func TestRecommendationsParsesQueryParams(t *testing.T) {
	rec := &fakeRecommender{}
	s := newTestServer(newFakeStore(), rec, &fakeIngestService{}, &fakeEmbedService{})

	rr := doRequest(s, "GET", "/v1/recommendations/u1?limit=5&min_sentiment=0.6&difficulty=Advanced&include_reasons=true&explain_top=-1", "")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 5, rec.gotParams.Limit)
	assert.InDelta(t, 0.6, rec.gotParams.MinSentiment, 1e-9)
	require.NotNil(t, rec.gotParams.DifficultyFilter)
	assert.Equal(t, types.DifficultyAdvanced, *rec.gotParams.DifficultyFilter)
	assert.True(t, rec.gotParams.IncludeReasons)
	assert.Equal(t, -1, rec.gotParams.ExplainTop)
}

func TestRecommendationsDisablesReasons(t *testing.T) {
	rec := &fakeRecommender{}
	s := newTestServer(newFakeStore(), rec, &fakeIngestService{}, &fakeEmbedService{})

	rr := doRequest(s, "GET", "/v1/recommendations/u1?include_reasons=false", "")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.False(t, rec.gotParams.IncludeReasons)
}

func TestRecommendationsRejectsOutOfRangeParams(t *testing.T) {
	s := newTestServer(newFakeStore(), &fakeRecommender{}, &fakeIngestService{}, &fakeEmbedService{})

	tests := []struct {
		name  string
		query string
	}{
		{name: "limit too high", query: "limit=51"},
		{name: "limit zero", query: "limit=0"},
		{name: "sentiment above one", query: "min_sentiment=1.5"},
		{name: "negative threshold", query: "similarity_threshold=-0.1"},
		{name: "explain_top too high", query: "explain_top=21"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doRequest(s, "GET", "/v1/recommendations/u1?"+tt.query, "")
			assert.Equal(t, http.StatusBadRequest, rr.Code)
		})
	}
}

func TestRecommendationsRejectsBadDifficulty(t *testing.T) {
	s := newTestServer(newFakeStore(), &fakeRecommender{}, &fakeIngestService{}, &fakeEmbedService{})

	rr := doRequest(s, "GET", "/v1/recommendations/u1?difficulty=Expert", "")

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestRecommendationsMapsMissingEmbeddingTo404(t *testing.T) {
	rec := &fakeRecommender{err: &recommend.ErrUserEmbeddingNotFound{UserID: "u1"}}
	s := newTestServer(newFakeStore(), rec, &fakeIngestService{}, &fakeEmbedService{})

	rr := doRequest(s, "GET", "/v1/recommendations/u1", "")

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestExplainRecommendations(t *testing.T) {
	rec := &fakeRecommender{}
	s := newTestServer(newFakeStore(), rec, &fakeIngestService{}, &fakeEmbedService{})

	rr := doRequest(s, "POST", "/v1/explanations/recommendations", `{"user_id": "u1", "explain_top": 1, "difficulty": "Beginner"}`)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 1, rec.gotParams.ExplainTop)
	require.NotNil(t, rec.gotParams.DifficultyFilter)
	assert.Equal(t, types.DifficultyBeginner, *rec.gotParams.DifficultyFilter)
}

func TestExplainVideo(t *testing.T) {
	s := newTestServer(newFakeStore(), &fakeRecommender{}, &fakeIngestService{}, &fakeEmbedService{})

	rr := doRequest(s, "POST", "/v1/explanations/video", `{"user_id": "u1", "video_id": "v1"}`)

	require.Equal(t, http.StatusOK, rr.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "because u1 likes v1", resp["explanation"])
}

func TestExplainBatch(t *testing.T) {
	s := newTestServer(newFakeStore(), &fakeRecommender{}, &fakeIngestService{}, &fakeEmbedService{})

	rr := doRequest(s, "POST", "/v1/explanations/batch", `{"user_id": "u1", "video_ids": ["v1", "v2"]}`)

	require.Equal(t, http.StatusOK, rr.Code)
	var resp struct {
		UserID       string `json:"user_id"`
		Explanations []struct {
			VideoID     string `json:"video_id"`
			Explanation string `json:"explanation"`
		} `json:"explanations"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp.Explanations, 2)
	assert.Equal(t, "v1", resp.Explanations[0].VideoID)
	assert.Equal(t, "because u1 likes v2", resp.Explanations[1].Explanation)
}

func TestExplainBatchRequiresVideoIDs(t *testing.T) {
	s := newTestServer(newFakeStore(), &fakeRecommender{}, &fakeIngestService{}, &fakeEmbedService{})

	rr := doRequest(s, "POST", "/v1/explanations/batch", `{"user_id": "u1", "video_ids": []}`)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestExplainVideoNotFound(t *testing.T) {
	rec := &fakeRecommender{err: &recommend.ErrVideoNotFound{VideoID: "v1"}}
	s := newTestServer(newFakeStore(), rec, &fakeIngestService{}, &fakeEmbedService{})

	rr := doRequest(s, "POST", "/v1/explanations/video", `{"user_id": "u1", "video_id": "v1"}`)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestIngestYouTube(t *testing.T) {
	s := newTestServer(newFakeStore(), &fakeRecommender{}, &fakeIngestService{}, &fakeEmbedService{})

	rr := doRequest(s, "POST", "/v1/ingest/youtube", `{"topics": ["FastAPI"]}`)

	require.Equal(t, http.StatusOK, rr.Code)
	var resp types.IngestResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Inserted)
}

func TestIngestYouTubeRefreshRunsWorkflow(t *testing.T) {
	ing := &fakeIngestService{}
	s := newTestServer(newFakeStore(), &fakeRecommender{}, ing, &fakeEmbedService{})

	rr := doRequest(s, "POST", "/v1/ingest/youtube", `{"topics": ["FastAPI"], "refresh": true}`)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, ing.refreshed)
}

func TestIngestYouTubeRequiresTopics(t *testing.T) {
	s := newTestServer(newFakeStore(), &fakeRecommender{}, &fakeIngestService{}, &fakeEmbedService{})

	rr := doRequest(s, "POST", "/v1/ingest/youtube", `{"topics": []}`)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestEnrichVideoNotFound(t *testing.T) {
	s := newTestServer(newFakeStore(), &fakeRecommender{}, &fakeIngestService{}, &fakeEmbedService{})

	rr := doRequest(s, "POST", "/v1/enrich/videos/missing", "")

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestEmbedVideo(t *testing.T) {
	store := newFakeStore()
	store.videos["v1"] = &types.VideoRecord{VideoID: "v1", Title: "t"}
	s := newTestServer(store, &fakeRecommender{}, &fakeIngestService{}, &fakeEmbedService{})

	rr := doRequest(s, "POST", "/v1/embeddings/videos/v1", "")

	require.Equal(t, http.StatusOK, rr.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, float64(2), resp["embedding_dims"])
}

func TestEmbedVideoNotFound(t *testing.T) {
	s := newTestServer(newFakeStore(), &fakeRecommender{}, &fakeIngestService{}, &fakeEmbedService{})

	rr := doRequest(s, "POST", "/v1/embeddings/videos/ghost", "")

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestEmbedUserRequiresOnboarding(t *testing.T) {
	s := newTestServer(newFakeStore(), &fakeRecommender{}, &fakeIngestService{}, &fakeEmbedService{})

	rr := doRequest(s, "POST", "/v1/embeddings/users/u1", "")

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestEmbedUserWithProfile(t *testing.T) {
	store := newFakeStore()
	store.profiles["u1"] = &types.UserProfile{UserID: "u1", Goals: []string{"learn"}}
	s := newTestServer(store, &fakeRecommender{}, &fakeIngestService{}, &fakeEmbedService{})

	rr := doRequest(s, "POST", "/v1/embeddings/users/u1", "")

	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestWorkflowRefresh(t *testing.T) {
	ing := &fakeIngestService{}
	s := newTestServer(newFakeStore(), &fakeRecommender{}, ing, &fakeEmbedService{})

	rr := doRequest(s, "POST", "/v1/workflow/refresh", `{"topics": ["Go"]}`)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, ing.refreshed)
}

func TestHealth(t *testing.T) {
	s := newTestServer(newFakeStore(), &fakeRecommender{}, &fakeIngestService{}, &fakeEmbedService{})

	rr := doRequest(s, "GET", "/health", "")

	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestInternalErrorsReturn500(t *testing.T) {
	rec := &fakeRecommender{err: errors.New("boom")}
	s := newTestServer(newFakeStore(), rec, &fakeIngestService{}, &fakeEmbedService{})

	rr := doRequest(s, "GET", "/v1/recommendations/u1", "")

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}
