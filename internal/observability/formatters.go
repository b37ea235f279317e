// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/learntube/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// candidateLine renders one candidate's signals on a single line.
func candidateLine(c types.ClassifiedCandidate) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("sim=%.2f", c.SimilarityOrZero()))
	if c.Difficulty != nil {
		sb.WriteString(fmt.Sprintf(" %s", *c.Difficulty))
	}
	if c.SentimentScore != nil {
		sb.WriteString(fmt.Sprintf(" sent=%.2f", *c.SentimentScore))
	}
	return sb.String()
}

// PrintAccepted outputs the accepted candidates with their signals.
func (p *Printer) PrintAccepted(candidates []types.ClassifiedCandidate) {
	if len(candidates) == 0 {
		p.printBox("ACCEPTED CANDIDATES", "No candidates passed the filters")
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Accepted %d candidates:\n\n", len(candidates)))

	count := min(len(candidates), maxItemsToShow)
	for i := 0; i < count; i++ {
		c := candidates[i]
		sb.WriteString(fmt.Sprintf("#%d  %s\n", i+1, c.VideoID))
		sb.WriteString(fmt.Sprintf("    %s\n", candidateLine(c)))
		if len(c.TopicTags) > 0 {
			topics := strings.Join(c.TopicTags, ", ")
			if len(topics) > 40 {
				topics = topics[:37] + "..."
			}
			sb.WriteString(fmt.Sprintf("    Topics: %s\n", topics))
		}
		if i < count-1 {
			sb.WriteString("\n")
		}
	}

	if len(candidates) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more candidates", len(candidates)-maxItemsToShow))
	}

	p.printBox("ACCEPTED CANDIDATES", sb.String())
}

// PrintRejected outputs the rejected candidates with their rejection reasons.
func (p *Printer) PrintRejected(candidates []types.ClassifiedCandidate) {
	if len(candidates) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Rejected %d candidates:\n\n", len(candidates)))

	count := min(len(candidates), maxItemsToShow)
	for i := 0; i < count; i++ {
		c := candidates[i]
		sb.WriteString(fmt.Sprintf("⚠ %s  (%s)\n", c.VideoID, candidateLine(c)))
		if c.RejectionReason != nil {
			reason := *c.RejectionReason
			if len(reason) > 50 {
				reason = reason[:47] + "..."
			}
			sb.WriteString(fmt.Sprintf("  %s\n", reason))
		}
		if i < count-1 {
			sb.WriteString("\n")
		}
	}

	if len(candidates) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more candidates", len(candidates)-maxItemsToShow))
	}

	p.printBox("REJECTED CANDIDATES", sb.String())
}

// PrintExplanations outputs the generated explanations with token usage.
func (p *Printer) PrintExplanations(explained []types.ExplainedCandidate) {
	if len(explained) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Explained %d candidates:\n\n", len(explained)))

	for i, e := range explained {
		sb.WriteString(fmt.Sprintf("#%d  %s\n", i+1, e.VideoID))
		text := e.Explanation
		if len(text) > 50 {
			text = text[:47] + "..."
		}
		sb.WriteString(fmt.Sprintf("    %s\n", text))
		sb.WriteString(fmt.Sprintf("    Tokens: %d\n", e.Usage.TotalTokens))
		if i < len(explained)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox("EXPLANATIONS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintIngestSummary outputs the result of one ingestion batch.
func (p *Printer) PrintIngestSummary(resp *types.IngestResponse) {
	if resp == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Attempted: %d\n", resp.Attempted))
	sb.WriteString(fmt.Sprintf("Inserted:  %d\n", resp.Inserted))
	sb.WriteString(fmt.Sprintf("Skipped:   %d\n", resp.Skipped))

	if len(resp.Topics) > 0 {
		sb.WriteString("\nTopics:\n")
		count := min(len(resp.Topics), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s\n", resp.Topics[i]))
		}
		if len(resp.Topics) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(resp.Topics)-maxItemsToShow))
		}
	}

	p.printBox("INGESTION SUMMARY", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintEnrichment outputs the NLP signals attached to a video by enrichment.
func (p *Printer) PrintEnrichment(result *types.EnrichmentResult) {
	if result == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Video:      %s\n", result.VideoID))
	sb.WriteString(fmt.Sprintf("Difficulty: %s (%.2f)\n", result.Difficulty, result.DifficultyConfidence))
	if result.SentimentScore != nil {
		sb.WriteString(fmt.Sprintf("Sentiment:  %.2f (from %d comments)\n",
			*result.SentimentScore, result.CommentCountAnalyzed))
	} else {
		sb.WriteString("Sentiment:  unknown (no comments analyzed)\n")
	}
	if len(result.TopicTags) > 0 {
		sb.WriteString(fmt.Sprintf("Topics:     %s\n", strings.Join(result.TopicTags, ", ")))
	}

	p.printBox("ENRICHMENT RESULT", strings.TrimSuffix(sb.String(), "\n"))
}
