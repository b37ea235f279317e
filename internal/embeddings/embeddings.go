// Package embeddings turns videos and user onboarding data into embedding
// vectors and keeps the stored vectors current.
package embeddings

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonathan/learntube/internal/types"
)

// Provider computes an embedding vector for a piece of text.
type Provider interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
}

// Store persists embedding vectors.
type Store interface {
	UpsertVideoEmbedding(ctx context.Context, videoID string, embedding []float32) error
	UpsertUserEmbedding(ctx context.Context, userID string, embedding []float32) error
}

// Service embeds domain objects and writes the vectors through the store.
type Service struct {
	provider Provider
	store    Store
}

// NewService creates an embedding Service.
func NewService(provider Provider, store Store) *Service {
	return &Service{provider: provider, store: store}
}

// EmbedVideo computes and stores the embedding for a video's content text.
func (s *Service) EmbedVideo(ctx context.Context, video types.VideoRecord) ([]float32, error) {
	text := TextFromVideo(video)
	if text == "" {
		return nil, fmt.Errorf("video %s has no embeddable text", video.VideoID)
	}

	embedding, err := s.provider.EmbedText(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to embed video %s: %w", video.VideoID, err)
	}
	if err := s.store.UpsertVideoEmbedding(ctx, video.VideoID, embedding); err != nil {
		return nil, fmt.Errorf("failed to store embedding for video %s: %w", video.VideoID, err)
	}
	return embedding, nil
}

// EmbedUser computes and stores the embedding for a user's learning profile.
func (s *Service) EmbedUser(ctx context.Context, userID string, profile types.UserProfile, prefs types.UserPreferences) ([]float32, error) {
	text := TextFromUser(profile, prefs)
	if text == "" {
		return nil, fmt.Errorf("user %s has no embeddable profile text", userID)
	}

	embedding, err := s.provider.EmbedText(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to embed user %s: %w", userID, err)
	}
	if err := s.store.UpsertUserEmbedding(ctx, userID, embedding); err != nil {
		return nil, fmt.Errorf("failed to store embedding for user %s: %w", userID, err)
	}
	return embedding, nil
}

// TextFromVideo renders the text that represents a video in embedding space.
// Topic tags are included so enrichment shifts the video toward its topics.
func TextFromVideo(video types.VideoRecord) string {
	parts := make([]string, 0, 4)
	if video.Title != "" {
		parts = append(parts, "Title: "+video.Title)
	}
	if video.ChannelTitle != "" {
		parts = append(parts, "Channel: "+video.ChannelTitle)
	}
	if len(video.TopicTags) > 0 {
		parts = append(parts, "Topics: "+strings.Join(video.TopicTags, ", "))
	}
	if desc := strings.TrimSpace(video.Description); desc != "" {
		parts = append(parts, "Description: "+desc)
	}
	return strings.Join(parts, "\n")
}

// TextFromUser renders the text that represents a learner in embedding space.
func TextFromUser(profile types.UserProfile, prefs types.UserPreferences) string {
	parts := make([]string, 0, 4)
	if len(profile.Goals) > 0 {
		parts = append(parts, "Learning goals: "+strings.Join(profile.Goals, ", "))
	}
	if obj := strings.TrimSpace(profile.MainObjective); obj != "" {
		parts = append(parts, "Main objective: "+obj)
	}
	if len(prefs.SkillLevels) > 0 {
		parts = append(parts, "Skill levels: "+strings.Join(prefs.SkillLevels, ", "))
	}
	if style := strings.TrimSpace(prefs.LearningStyle); style != "" {
		parts = append(parts, "Preferred learning style: "+style)
	}
	return strings.Join(parts, "\n")
}
