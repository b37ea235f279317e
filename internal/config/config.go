// Package config provides configuration loading for the recommendation service.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config is the service configuration, loadable from a JSON file. All fields
// are optional; missing values fall back to defaults or environment variables.
type Config struct {
	// Connections
	DatabaseURL   string `json:"database_url,omitempty"`    // PostgreSQL connection URL
	GeminiAPIKey  string `json:"gemini_api_key,omitempty"`  // Gemini API key
	YouTubeAPIKey string `json:"youtube_api_key,omitempty"` // YouTube Data API key
	Addr          string `json:"addr,omitempty"`            // HTTP listen address

	// Recommendation defaults
	SimilarityThreshold float64 `json:"similarity_threshold,omitempty"` // Minimum similarity for acceptance (0.0-1.0)
	MinSentiment        float64 `json:"min_sentiment,omitempty"`        // Sentiment floor for acceptance (0.0-1.0)
	SearchLimit         int     `json:"search_limit,omitempty"`         // Vector search candidate count
	ExplainTop          int     `json:"explain_top,omitempty"`          // Accepted candidates to explain per request
}

// Defaults returns the baseline configuration before file or env overrides.
// The recommendation values double as the request-level defaults: no
// similarity or sentiment floor, ten candidates, explanations for the top
// three accepted.
func Defaults() Config {
	return Config{
		Addr:                ":8000",
		SimilarityThreshold: 0.0,
		MinSentiment:        0.0,
		SearchLimit:         10,
		ExplainTop:          3,
	}
}

// Load reads configuration from a JSON file and merges it over the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg := Defaults()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// FromEnv builds a configuration from defaults plus environment variables,
// for deployments without a config file.
func FromEnv() (*Config, error) {
	cfg := Defaults()
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyEnv lets environment variables override connection settings. File
// values win over env only when the env variable is unset.
func (c *Config) applyEnv() {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.DatabaseURL = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		c.GeminiAPIKey = v
	}
	if v := os.Getenv("YOUTUBE_API_KEY"); v != "" {
		c.YouTubeAPIKey = v
	}
	if v := os.Getenv("ADDR"); v != "" {
		c.Addr = v
	}
}

// Validate checks numeric ranges.
func (c *Config) Validate() error {
	if c.SimilarityThreshold < 0 || c.SimilarityThreshold > 1 {
		return fmt.Errorf("config error: 'similarity_threshold' must be in [0, 1]")
	}
	if c.MinSentiment < 0 || c.MinSentiment > 1 {
		return fmt.Errorf("config error: 'min_sentiment' must be in [0, 1]")
	}
	if c.SearchLimit < 1 {
		return fmt.Errorf("config error: 'search_limit' must be positive")
	}
	return nil
}
