// Package main provides the entry point for the LearnTube recommendation backend.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "learntube",
	Short: "LearnTube recommendation backend",
	Long:  "LearnTube ingests educational YouTube videos, enriches them with LLM-derived signals, and serves personalized, explainable recommendations via REST API.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
