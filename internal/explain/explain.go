// Package explain generates natural-language explanations for why a video
// was recommended to a user, grounded strictly in the recommendation context.
package explain

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonathan/learntube/internal/llm"
	"github.com/jonathan/learntube/internal/types"
)

// Explainer generates recommendation explanations via an LLM.
type Explainer struct {
	client llm.Client
	tier   llm.ModelTier
}

// NewExplainer creates an Explainer that generates with the given client.
func NewExplainer(client llm.Client) *Explainer {
	return &Explainer{
		client: client,
		tier:   llm.TierStandard,
	}
}

// Generate produces a short explanation for one recommendation context.
func (e *Explainer) Generate(ctx context.Context, ec types.ExplanationContext) (*types.ExplanationResult, error) {
	result, err := e.client.GenerateContent(ctx, buildPrompt(ec), e.tier)
	if err != nil {
		return nil, fmt.Errorf("explanation call failed: %w", err)
	}

	explanation := strings.TrimSpace(result.Text)
	if explanation == "" {
		return nil, fmt.Errorf("model returned an empty explanation")
	}

	return &types.ExplanationResult{
		Explanation: explanation,
		Usage:       result.Usage,
	}, nil
}

// buildPrompt renders the explanation prompt. The instruction pins the model
// to the provided context so explanations never invent user or video facts.
func buildPrompt(ec types.ExplanationContext) string {
	var sb strings.Builder

	sb.WriteString("You are an assistant that explains recommendation decisions.")
	sb.WriteString(" Use only the provided context (user goals, onboarding, video metadata, similarity/difficulty/sentiment) and keep the explanation concise.\n\n")

	sb.WriteString("User profile:\n")
	fmt.Fprintf(&sb, "- Goals: %s\n", joinOrNone(ec.Profile.Goals))
	fmt.Fprintf(&sb, "- Objective: %s\n", orNone(ec.Profile.MainObjective))
	fmt.Fprintf(&sb, "- Skill levels: %s\n", joinOrNone(ec.Preferences.SkillLevels))
	fmt.Fprintf(&sb, "- Learning style: %s\n\n", orNone(ec.Preferences.LearningStyle))

	sb.WriteString("Video:\n")
	fmt.Fprintf(&sb, "- Title: %s\n", ec.Video.Title)
	fmt.Fprintf(&sb, "- Topics: %s\n", joinOrNone(ec.Video.TopicTags))
	if ec.Video.Difficulty != nil {
		fmt.Fprintf(&sb, "- Difficulty: %s\n", *ec.Video.Difficulty)
	} else {
		sb.WriteString("- Difficulty: unknown\n")
	}
	if ec.Video.SentimentScore != nil {
		fmt.Fprintf(&sb, "- Sentiment score: %.2f\n\n", *ec.Video.SentimentScore)
	} else {
		sb.WriteString("- Sentiment score: unknown\n\n")
	}

	sb.WriteString("Recommendation metadata:\n")
	if ec.Recommendation.Similarity != nil {
		fmt.Fprintf(&sb, "- Similarity: %.3f\n", *ec.Recommendation.Similarity)
	} else {
		sb.WriteString("- Similarity: not available\n")
	}
	fmt.Fprintf(&sb, "- Sentiment filter: %.2f\n", ec.Recommendation.MinSentiment)
	if ec.Recommendation.DifficultyFilter != nil {
		fmt.Fprintf(&sb, "- Difficulty filter: %s\n", *ec.Recommendation.DifficultyFilter)
	} else {
		sb.WriteString("- Difficulty filter: none\n")
	}

	sb.WriteString("\nExplain in a short paragraph why this video makes sense, referencing the user goals, NLP signals, and similarity result.\n")

	return sb.String()
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ", ")
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "none"
	}
	return s
}
