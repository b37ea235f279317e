package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/learntube/internal/config"
	"github.com/jonathan/learntube/internal/db"
	"github.com/jonathan/learntube/internal/explain"
	"github.com/jonathan/learntube/internal/llm"
	"github.com/jonathan/learntube/internal/observability"
	"github.com/jonathan/learntube/internal/recommend"
	"github.com/jonathan/learntube/internal/types"
)

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Run the recommendation pipeline for a user",
	Long:  "Run the full recommendation pipeline for one user and print the accepted and rejected candidates, optionally with generated explanations.",
	RunE:  runRecommend,
}

var (
	recUserID         string
	recLimit          int
	recMinSentiment   float64
	recSimilarity     float64
	recDifficulty     string
	recExplainTop     int
	recExplain        bool
	recIncludeReasons bool
	recJSON           bool
)

func init() {
	defaults := config.Defaults()
	recommendCmd.Flags().StringVarP(&recUserID, "user", "u", "", "User ID to recommend for (required)")
	recommendCmd.Flags().IntVar(&recLimit, "limit", defaults.SearchLimit, "Maximum candidates to retrieve")
	recommendCmd.Flags().Float64Var(&recMinSentiment, "min-sentiment", defaults.MinSentiment, "Sentiment floor in [0, 1]")
	recommendCmd.Flags().Float64Var(&recSimilarity, "similarity-threshold", defaults.SimilarityThreshold, "Similarity threshold in [0, 1]")
	recommendCmd.Flags().StringVar(&recDifficulty, "difficulty", "", "Restrict to one difficulty level (Beginner, Intermediate, Advanced)")
	recommendCmd.Flags().IntVar(&recExplainTop, "explain-top", defaults.ExplainTop, "Number of accepted candidates to explain (negative means all)")
	recommendCmd.Flags().BoolVar(&recExplain, "explain", false, "Generate explanations for the top accepted candidates")
	recommendCmd.Flags().BoolVar(&recIncludeReasons, "include-reasons", true, "Attach rejection reasons to rejected candidates")
	recommendCmd.Flags().BoolVar(&recJSON, "json", false, "Print raw JSON instead of formatted output")
	_ = recommendCmd.MarkFlagRequired("user")

	rootCmd.AddCommand(recommendCmd)
}

func runRecommend(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := config.FromEnv()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	llmClient, err := llm.NewClient(ctx, nil, cfg.GeminiAPIKey)
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}
	defer func() { _ = llmClient.Close() }()

	explainer := explain.NewExplainer(llmClient)
	recommender := recommend.NewRecommender(database, database, database, database, database, explainer)

	params := recommend.Params{
		UserID:              recUserID,
		Limit:               recLimit,
		MinSentiment:        recMinSentiment,
		SimilarityThreshold: recSimilarity,
		ExplainTop:          recExplainTop,
		IncludeReasons:      recIncludeReasons,
	}
	if recDifficulty != "" {
		difficulty, err := types.ParseDifficulty(recDifficulty)
		if err != nil {
			return err
		}
		params.DifficultyFilter = &difficulty
	}

	printer := observability.NewPrinter(os.Stdout)

	if recExplain {
		result, err := recommender.RecommendWithExplanations(ctx, params)
		if err != nil {
			return fmt.Errorf("recommendation failed: %w", err)
		}
		if recJSON {
			return printJSON(result)
		}
		printer.PrintAccepted(result.Accepted)
		printer.PrintRejected(result.Rejected)
		printer.PrintExplanations(result.Explanations)
		return nil
	}

	result, err := recommender.Recommend(ctx, params)
	if err != nil {
		return fmt.Errorf("recommendation failed: %w", err)
	}
	if recJSON {
		return printJSON(result)
	}
	printer.PrintAccepted(result.Accepted)
	printer.PrintRejected(result.Rejected)
	return nil
}

func printJSON(v any) error {
	jsonBytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	_, _ = fmt.Fprintln(os.Stdout, string(jsonBytes))
	return nil
}
