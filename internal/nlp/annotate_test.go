package nlp

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/learntube/internal/llm"
	"github.com/jonathan/learntube/internal/types"
)

type stubClient struct {
	text      string
	err       error
	gotPrompt string
	calls     int
}

func (s *stubClient) GenerateContent(_ context.Context, prompt string, _ llm.ModelTier) (*llm.Result, error) {
	s.calls++
	s.gotPrompt = prompt
	if s.err != nil {
		return nil, s.err
	}
	return &llm.Result{Text: s.text}, nil
}

func (s *stubClient) GenerateJSON(ctx context.Context, prompt string, tier llm.ModelTier) (*llm.Result, error) {
	return s.GenerateContent(ctx, prompt, tier)
}

func (s *stubClient) EmbedText(_ context.Context, _ string) ([]float32, error) {
	return nil, errors.New("not implemented")
}

func (s *stubClient) GetModel(_ llm.ModelTier) string { return "stub" }

func (s *stubClient) Close() error { return nil }

func TestAnnotateContentParsesValidOutput(t *testing.T) {
	client := &stubClient{text: `{"difficulty": "Advanced", "difficulty_confidence": 0.85, "topics": ["FastAPI", "Web Development"]}`}
	a := NewAnnotator(client)

	annotation, err := a.AnnotateContent(context.Background(), "Deep dive into dependency injection")
	require.NoError(t, err)

	assert.Equal(t, types.DifficultyAdvanced, annotation.Difficulty)
	assert.InDelta(t, 0.85, annotation.DifficultyConfidence, 1e-9)
	assert.Equal(t, []string{"FastAPI", "Web Development"}, annotation.TopicTags)
}

func TestAnnotateContentEmptyTextSkipsModel(t *testing.T) {
	client := &stubClient{}
	a := NewAnnotator(client)

	annotation, err := a.AnnotateContent(context.Background(), "   \n")
	require.NoError(t, err)

	assert.Equal(t, 0, client.calls)
	assert.Equal(t, types.DifficultyIntermediate, annotation.Difficulty)
	assert.InDelta(t, 0.5, annotation.DifficultyConfidence, 1e-9)
	assert.Empty(t, annotation.TopicTags)
}

func TestAnnotateContentRejectsInvalidDifficulty(t *testing.T) {
	client := &stubClient{text: `{"difficulty": "Expert", "difficulty_confidence": 0.9, "topics": []}`}
	a := NewAnnotator(client)

	_, err := a.AnnotateContent(context.Background(), "some content")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "annotation output rejected")
}

func TestAnnotateContentDropsUnknownTopics(t *testing.T) {
	client := &stubClient{text: `{"difficulty": "Beginner", "difficulty_confidence": 0.7, "topics": ["Knitting", "SQL", "Cloud"]}`}
	a := NewAnnotator(client)

	annotation, err := a.AnnotateContent(context.Background(), "intro to databases")
	require.NoError(t, err)

	assert.Equal(t, []string{"SQL", "Cloud"}, annotation.TopicTags)
}

func TestAnnotateContentPromptIncludesCandidates(t *testing.T) {
	client := &stubClient{text: `{"difficulty": "Beginner", "difficulty_confidence": 0.7, "topics": []}`}
	a := NewAnnotator(client)

	_, err := a.AnnotateContent(context.Background(), "intro video")
	require.NoError(t, err)

	assert.Contains(t, client.gotPrompt, "React Hooks")
	assert.Contains(t, client.gotPrompt, "intro video")
}

func TestAnnotateContentPropagatesClientError(t *testing.T) {
	client := &stubClient{err: errors.New("quota exceeded")}
	a := NewAnnotator(client)

	_, err := a.AnnotateContent(context.Background(), "content")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestScoreCommentSentiment(t *testing.T) {
	client := &stubClient{text: `{"score": 0.75}`}
	a := NewAnnotator(client)

	score, analyzed, err := a.ScoreCommentSentiment(context.Background(), []string{"great video", "loved it", "meh", "super clear"})
	require.NoError(t, err)

	require.NotNil(t, score)
	assert.InDelta(t, 0.75, *score, 1e-9)
	assert.Equal(t, 4, analyzed)
	assert.Contains(t, client.gotPrompt, "great video")
}

func TestScoreCommentSentimentNoComments(t *testing.T) {
	client := &stubClient{}
	a := NewAnnotator(client)

	score, analyzed, err := a.ScoreCommentSentiment(context.Background(), nil)
	require.NoError(t, err)

	assert.Nil(t, score)
	assert.Equal(t, 0, analyzed)
	assert.Equal(t, 0, client.calls)
}

func TestScoreCommentSentimentRejectsOutOfRange(t *testing.T) {
	client := &stubClient{text: `{"score": 1.4}`}
	a := NewAnnotator(client)

	_, _, err := a.ScoreCommentSentiment(context.Background(), []string{"wow"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sentiment output rejected")
}
