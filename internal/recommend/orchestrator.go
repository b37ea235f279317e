package recommend

import (
	"context"
	"fmt"
	"log"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/learntube/internal/types"
)

// FeedbackStore reads aggregated feedback counts for a user.
type FeedbackStore interface {
	CountsByType(ctx context.Context, userID string) (FeedbackCounts, error)
}

// EmbeddingStore resolves stored user embeddings. A nil or empty vector with
// a nil error means the user has no embedding yet.
type EmbeddingStore interface {
	GetUserEmbedding(ctx context.Context, userID string) ([]float32, error)
}

// VectorSearch runs nearest-neighbor search over the video embedding index.
type VectorSearch interface {
	SearchVideoEmbeddings(ctx context.Context, embedding []float32, limit int) ([]types.CandidateRecord, error)
}

// VideoStore resolves stored video metadata. A nil record with a nil error
// means the video is unknown.
type VideoStore interface {
	GetVideo(ctx context.Context, videoID string) (*types.VideoRecord, error)
}

// ProfileStore resolves onboarding data used to build explanation context.
type ProfileStore interface {
	GetProfile(ctx context.Context, userID string) (*types.UserProfile, error)
	GetPreferences(ctx context.Context, userID string) (*types.UserPreferences, error)
}

// ExplanationGenerator produces a natural-language explanation for one
// recommended video.
type ExplanationGenerator interface {
	Generate(ctx context.Context, ec types.ExplanationContext) (*types.ExplanationResult, error)
}

// Params are the caller-supplied knobs for one recommendation request.
// The server validates ranges before constructing Params.
type Params struct {
	UserID              string
	Limit               int
	MinSentiment        float64
	DifficultyFilter    *types.Difficulty
	SimilarityThreshold float64
	ExplainTop          int
	IncludeReasons      bool
}

// Recommendation is the result of the filtering pipeline without explanations.
type Recommendation struct {
	UserID            string                      `json:"user_id"`
	Accepted          []types.ClassifiedCandidate `json:"accepted"`
	Rejected          []types.ClassifiedCandidate `json:"rejected"`
	ExplainCandidates []types.ClassifiedCandidate `json:"explain_candidates"`
}

// ExplainedRecommendation is the result of the pipeline including generated
// explanations for the selected top candidates.
type ExplainedRecommendation struct {
	UserID       string                      `json:"user_id"`
	Accepted     []types.ClassifiedCandidate `json:"accepted"`
	Rejected     []types.ClassifiedCandidate `json:"rejected"`
	Explanations []types.ExplainedCandidate  `json:"explanations"`
}

// Recommender composes the pipeline stages with external collaborators.
// All dependencies are injected; the orchestrator holds no global state.
type Recommender struct {
	feedback   FeedbackStore
	embeddings EmbeddingStore
	search     VectorSearch
	videos     VideoStore
	profiles   ProfileStore
	explainer  ExplanationGenerator
}

// NewRecommender creates a Recommender with the given collaborators.
// The explainer may be nil if only Recommend (no explanations) is used.
func NewRecommender(
	feedback FeedbackStore,
	embeddings EmbeddingStore,
	search VectorSearch,
	videos VideoStore,
	profiles ProfileStore,
	explainer ExplanationGenerator,
) *Recommender {
	return &Recommender{
		feedback:   feedback,
		embeddings: embeddings,
		search:     search,
		videos:     videos,
		profiles:   profiles,
		explainer:  explainer,
	}
}

// effectiveFilters resolves the filters for a request: the caller-supplied
// values adjusted by feedback history. A feedback store failure fails open,
// returning the caller's filters untouched.
func (r *Recommender) effectiveFilters(ctx context.Context, p Params) types.FilterParameters {
	difficulty := p.DifficultyFilter
	minSentiment := p.MinSentiment

	counts, err := r.feedback.CountsByType(ctx, p.UserID)
	if err != nil {
		log.Printf("feedback store unavailable for %s, using unadjusted filters: %v", p.UserID, err)
	} else {
		difficulty, minSentiment = AdjustPreferences(counts, difficulty, minSentiment)
	}

	return types.FilterParameters{
		DifficultyFilter:    difficulty,
		MinSentiment:        minSentiment,
		SimilarityThreshold: p.SimilarityThreshold,
	}
}

// pipeline runs the shared portion of the flow: embedding lookup, feedback
// adjustment, vector search, classification and explanation-candidate
// selection.
func (r *Recommender) pipeline(ctx context.Context, p Params) (types.ClassificationResult, []types.ClassifiedCandidate, types.FilterParameters, error) {
	embedding, err := r.embeddings.GetUserEmbedding(ctx, p.UserID)
	if err != nil {
		return types.ClassificationResult{}, nil, types.FilterParameters{}, fmt.Errorf("failed to look up user embedding: %w", err)
	}
	if len(embedding) == 0 {
		return types.ClassificationResult{}, nil, types.FilterParameters{}, &ErrUserEmbeddingNotFound{UserID: p.UserID}
	}

	filters := r.effectiveFilters(ctx, p)

	candidates, err := r.search.SearchVideoEmbeddings(ctx, embedding, p.Limit)
	if err != nil {
		return types.ClassificationResult{}, nil, types.FilterParameters{}, fmt.Errorf("vector search failed: %w", err)
	}

	result := Classify(candidates, filters, p.IncludeReasons)
	selected := SelectForExplanation(result.Accepted, p.ExplainTop)
	return result, selected, filters, nil
}

// Recommend runs the pipeline and returns the accepted/rejected partition
// plus the capped explanation candidate list, without generating explanations.
func (r *Recommender) Recommend(ctx context.Context, p Params) (*Recommendation, error) {
	result, selected, _, err := r.pipeline(ctx, p)
	if err != nil {
		return nil, err
	}
	return &Recommendation{
		UserID:            p.UserID,
		Accepted:          result.Accepted,
		Rejected:          result.Rejected,
		ExplainCandidates: selected,
	}, nil
}

// RecommendWithExplanations runs the pipeline and generates an explanation
// for each selected candidate.
//
// Video metadata is fetched concurrently; the accepted/rejected/explanations
// ordering still follows the sequential contract. A candidate whose metadata
// is missing (or whose fetch fails) is demoted into the rejected list with
// reason "video metadata missing" and skipped, without aborting the request.
// An explanation generation failure, by contrast, is terminal.
func (r *Recommender) RecommendWithExplanations(ctx context.Context, p Params) (*ExplainedRecommendation, error) {
	result, selected, filters, err := r.pipeline(ctx, p)
	if err != nil {
		return nil, err
	}

	profile, preferences := r.userContext(ctx, p.UserID)

	videos := make([]*types.VideoRecord, len(selected))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, candidate := range selected {
		g.Go(func() error {
			video, err := r.videos.GetVideo(gctx, candidate.VideoID)
			if err != nil {
				// Treated the same as missing: demoted below, not terminal.
				log.Printf("video metadata fetch failed for %s: %v", candidate.VideoID, err)
				return nil
			}
			videos[i] = video
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	rejected := result.Rejected
	explanations := make([]types.ExplainedCandidate, 0, len(selected))
	for i, candidate := range selected {
		video := videos[i]
		if video == nil {
			reason := "video metadata missing"
			demoted := candidate
			demoted.Accepted = false
			demoted.RejectionReason = &reason
			rejected = append(rejected, demoted)
			continue
		}

		ec := types.ExplanationContext{
			UserID:      p.UserID,
			Profile:     profile,
			Preferences: preferences,
			Video:       *video,
			Recommendation: types.RecommendationMeta{
				Similarity:       candidate.Similarity,
				MinSentiment:     filters.MinSentiment,
				DifficultyFilter: filters.DifficultyFilter,
			},
		}

		generated, err := r.explainer.Generate(ctx, ec)
		if err != nil {
			return nil, fmt.Errorf("explanation generation failed for video %s: %w", candidate.VideoID, err)
		}

		explanations = append(explanations, types.ExplainedCandidate{
			VideoID:        candidate.VideoID,
			Similarity:     candidate.Similarity,
			Difficulty:     video.Difficulty,
			SentimentScore: video.SentimentScore,
			TopicTags:      video.TopicTags,
			Explanation:    generated.Explanation,
			Usage:          generated.Usage,
		})
	}

	return &ExplainedRecommendation{
		UserID:       p.UserID,
		Accepted:     result.Accepted,
		Rejected:     rejected,
		Explanations: explanations,
	}, nil
}

// ExplainVideo generates an explanation for a single (user, video) pair
// outside the search pipeline. Missing video metadata is terminal here: the
// caller asked about that specific video.
func (r *Recommender) ExplainVideo(ctx context.Context, userID, videoID string, meta types.RecommendationMeta) (*types.ExplanationResult, error) {
	video, err := r.videos.GetVideo(ctx, videoID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch video %s: %w", videoID, err)
	}
	if video == nil {
		return nil, &ErrVideoNotFound{VideoID: videoID}
	}

	profile, preferences := r.userContext(ctx, userID)
	ec := types.ExplanationContext{
		UserID:         userID,
		Profile:        profile,
		Preferences:    preferences,
		Video:          *video,
		Recommendation: meta,
	}
	return r.explainer.Generate(ctx, ec)
}

// userContext fetches the user's profile and preferences, failing open to
// empty values: explanations degrade gracefully when onboarding data is
// unavailable.
func (r *Recommender) userContext(ctx context.Context, userID string) (types.UserProfile, types.UserPreferences) {
	profile := types.UserProfile{UserID: userID}
	preferences := types.UserPreferences{UserID: userID}

	if p, err := r.profiles.GetProfile(ctx, userID); err == nil && p != nil {
		profile = *p
	}
	if p, err := r.profiles.GetPreferences(ctx, userID); err == nil && p != nil {
		preferences = *p
	}
	return profile, preferences
}
