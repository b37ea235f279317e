package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/learntube/internal/config"
	"github.com/jonathan/learntube/internal/db"
	"github.com/jonathan/learntube/internal/embeddings"
	"github.com/jonathan/learntube/internal/ingest"
	"github.com/jonathan/learntube/internal/llm"
	"github.com/jonathan/learntube/internal/nlp"
	"github.com/jonathan/learntube/internal/observability"
	"github.com/jonathan/learntube/internal/types"
	"github.com/jonathan/learntube/internal/youtube"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Ingest educational videos from YouTube",
	Long:  "Search YouTube for the given topics, store the matching videos, and compute their embeddings. With --refresh the stale-content prune and enrichment passes run as well.",
	RunE:  runIngest,
}

var (
	ingestTopics     []string
	ingestMaxResults int
	ingestMinViews   int64
	ingestMaxAgeDays int
	ingestRefresh    bool
)

func init() {
	ingestCmd.Flags().StringSliceVarP(&ingestTopics, "topics", "t", nil, "Topics to search for (required)")
	ingestCmd.Flags().IntVar(&ingestMaxResults, "max-results", 10, "Maximum videos to keep per topic")
	ingestCmd.Flags().Int64Var(&ingestMinViews, "min-views", 0, "Minimum view count filter")
	ingestCmd.Flags().IntVar(&ingestMaxAgeDays, "max-age-days", 0, "Only keep videos published within this many days")
	ingestCmd.Flags().BoolVar(&ingestRefresh, "refresh", false, "Run the full refresh workflow (prune, ingest, enrich)")
	_ = ingestCmd.MarkFlagRequired("topics")

	rootCmd.AddCommand(ingestCmd)
}

var enrichCmd = &cobra.Command{
	Use:   "enrich <video-id>",
	Short: "Enrich one stored video with LLM-derived signals",
	Long:  "Annotate one stored video with difficulty, topic tags, and comment sentiment, then recompute its embedding.",
	Args:  cobra.ExactArgs(1),
	RunE:  runEnrich,
}

func init() {
	rootCmd.AddCommand(enrichCmd)
}

// buildIngestService wires the ingestion service from environment config.
// The returned cleanup closes the database and LLM client.
func buildIngestService(ctx context.Context) (*ingest.Service, func(), error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	llmClient, err := llm.NewClient(ctx, nil, cfg.GeminiAPIKey)
	if err != nil {
		database.Close()
		return nil, nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	ytClient, err := youtube.NewClient(ctx, cfg.YouTubeAPIKey)
	if err != nil {
		_ = llmClient.Close()
		database.Close()
		return nil, nil, fmt.Errorf("failed to create YouTube client: %w", err)
	}

	annotator := nlp.NewAnnotator(llmClient)
	embedService := embeddings.NewService(llmClient, database)
	service := ingest.NewService(ytClient, database, annotator, embedService)

	cleanup := func() {
		_ = llmClient.Close()
		database.Close()
	}
	return service, cleanup, nil
}

func runIngest(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	service, cleanup, err := buildIngestService(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	req := types.IngestRequest{
		Topics:             ingestTopics,
		MaxResultsPerTopic: ingestMaxResults,
		MinViewCount:       ingestMinViews,
		MaxAgeDays:         ingestMaxAgeDays,
		Refresh:            ingestRefresh,
	}

	printer := observability.NewPrinter(os.Stdout)

	if ingestRefresh {
		summary, err := service.RefreshWorkflow(ctx, req)
		if err != nil {
			return fmt.Errorf("refresh workflow failed: %w", err)
		}
		_, _ = fmt.Fprintf(os.Stdout, "Pruned %d stale videos\n", summary.Deleted)
		printer.PrintIngestSummary(summary.Ingested)
		_, _ = fmt.Fprintf(os.Stdout, "Enriched %d videos (%d failed)\n", len(summary.Enriched), len(summary.Failed))
		return nil
	}

	resp, err := service.IngestFromYouTube(ctx, req)
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}
	printer.PrintIngestSummary(resp)
	return nil
}

func runEnrich(_ *cobra.Command, args []string) error {
	ctx := context.Background()

	service, cleanup, err := buildIngestService(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	result, err := service.EnrichVideo(ctx, args[0])
	if err != nil {
		return fmt.Errorf("enrichment failed: %w", err)
	}

	observability.NewPrinter(os.Stdout).PrintEnrichment(result)
	return nil
}
