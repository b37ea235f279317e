// Package nlp derives content signals (difficulty, topics, comment sentiment)
// for ingested videos. The classifiers are LLM-backed; their JSON output is
// validated against a schema before anything reaches storage.
package nlp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jonathan/learntube/internal/llm"
	"github.com/jonathan/learntube/internal/schemas"
	"github.com/jonathan/learntube/internal/types"
)

// TopicCandidates is the closed set of topic tags the classifier may assign.
var TopicCandidates = []string{
	"React Hooks",
	"Machine Learning Basics",
	"FastAPI",
	"Python Basics",
	"AI/ML",
	"Web Development",
	"Data Science",
	"Cloud",
	"DevOps",
	"SQL",
	"Design Systems",
}

const maxTopicTags = 3

// annotationSchema constrains the model's annotation output.
const annotationSchema = `{
	"type": "object",
	"required": ["difficulty", "difficulty_confidence", "topics"],
	"additionalProperties": false,
	"properties": {
		"difficulty": {
			"type": "string",
			"enum": ["Beginner", "Intermediate", "Advanced"]
		},
		"difficulty_confidence": {
			"type": "number",
			"minimum": 0,
			"maximum": 1
		},
		"topics": {
			"type": "array",
			"maxItems": 3,
			"items": {"type": "string"}
		}
	}
}`

// sentimentSchema constrains the model's comment sentiment output.
const sentimentSchema = `{
	"type": "object",
	"required": ["score"],
	"additionalProperties": false,
	"properties": {
		"score": {"type": "number", "minimum": 0, "maximum": 1}
	}
}`

// Annotation is the set of content signals for one video.
type Annotation struct {
	Difficulty           types.Difficulty `json:"difficulty"`
	DifficultyConfidence float64          `json:"difficulty_confidence"`
	TopicTags            []string         `json:"topics"`
}

// Annotator classifies video content using an LLM.
type Annotator struct {
	client llm.Client
	tier   llm.ModelTier
}

// NewAnnotator creates an Annotator backed by the given client.
func NewAnnotator(client llm.Client) *Annotator {
	return &Annotator{
		client: client,
		tier:   llm.TierLite,
	}
}

// AnnotateContent classifies the difficulty of a video's text and extracts up
// to three topic tags from the candidate set. Empty text gets the neutral
// default (Intermediate, 0.5 confidence, no topics) without a model call.
func (a *Annotator) AnnotateContent(ctx context.Context, text string) (*Annotation, error) {
	if strings.TrimSpace(text) == "" {
		return &Annotation{
			Difficulty:           types.DifficultyIntermediate,
			DifficultyConfidence: 0.5,
			TopicTags:            []string{},
		}, nil
	}

	result, err := a.client.GenerateJSON(ctx, buildAnnotationPrompt(text), a.tier)
	if err != nil {
		return nil, fmt.Errorf("annotation call failed: %w", err)
	}

	if err := schemas.ValidateJSONString(annotationSchema, result.Text); err != nil {
		return nil, fmt.Errorf("annotation output rejected: %w", err)
	}

	var annotation Annotation
	if err := json.Unmarshal([]byte(result.Text), &annotation); err != nil {
		return nil, fmt.Errorf("failed to parse annotation output: %w", err)
	}

	annotation.TopicTags = filterToCandidates(annotation.TopicTags)
	return &annotation, nil
}

// ScoreCommentSentiment estimates the fraction of positive comments as a
// score in [0, 1]. With no comments there is nothing to score and the result
// is nil with a zero count.
func (a *Annotator) ScoreCommentSentiment(ctx context.Context, comments []string) (*float64, int, error) {
	if len(comments) == 0 {
		return nil, 0, nil
	}

	result, err := a.client.GenerateJSON(ctx, buildSentimentPrompt(comments), a.tier)
	if err != nil {
		return nil, 0, fmt.Errorf("sentiment call failed: %w", err)
	}

	if err := schemas.ValidateJSONString(sentimentSchema, result.Text); err != nil {
		return nil, 0, fmt.Errorf("sentiment output rejected: %w", err)
	}

	var parsed struct {
		Score float64 `json:"score"`
	}
	if err := json.Unmarshal([]byte(result.Text), &parsed); err != nil {
		return nil, 0, fmt.Errorf("failed to parse sentiment output: %w", err)
	}

	return &parsed.Score, len(comments), nil
}

func buildAnnotationPrompt(text string) string {
	var sb strings.Builder
	sb.WriteString("Classify the following video content.\n\n")
	sb.WriteString("Return JSON with exactly these fields:\n")
	sb.WriteString(`- "difficulty": one of "Beginner", "Intermediate", "Advanced"` + "\n")
	sb.WriteString(`- "difficulty_confidence": your confidence in the difficulty label, 0 to 1` + "\n")
	fmt.Fprintf(&sb, `- "topics": up to %d entries chosen only from: %s`+"\n\n", maxTopicTags, strings.Join(TopicCandidates, ", "))
	sb.WriteString("Content:\n")
	sb.WriteString(text)
	return sb.String()
}

func buildSentimentPrompt(comments []string) string {
	var sb strings.Builder
	sb.WriteString("The following are viewer comments on a video.\n")
	sb.WriteString(`Return JSON {"score": x} where x in [0, 1] is the fraction of comments with positive sentiment.` + "\n\n")
	for i, comment := range comments {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, comment)
	}
	return sb.String()
}

// filterToCandidates drops tags outside the candidate set and enforces the
// tag cap, preserving the model's ranking order.
func filterToCandidates(tags []string) []string {
	allowed := make(map[string]bool, len(TopicCandidates))
	for _, c := range TopicCandidates {
		allowed[c] = true
	}

	filtered := make([]string, 0, maxTopicTags)
	for _, tag := range tags {
		if len(filtered) >= maxTopicTags {
			break
		}
		if allowed[tag] {
			filtered = append(filtered, tag)
		}
	}
	return filtered
}
