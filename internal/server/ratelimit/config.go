package ratelimit

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// EndpointConfig is the rate limiting policy for one endpoint.
type EndpointConfig struct {
	Path   string        // Endpoint path (trailing slash enables prefix matching)
	Method string        // HTTP method
	Limit  int           // Maximum requests per window; <= 0 means unlimited
	Window time.Duration // Time window
	Burst  int           // Burst capacity (defaults to Limit if 0)
}

// LoadConfig builds the limiter configuration from environment variables.
func LoadConfig() *Config {
	enabled := getEnvBool("RATE_LIMIT_ENABLED", true)
	if !enabled {
		return &Config{Enabled: false}
	}

	return &Config{
		Enabled:         true,
		DefaultLimit:    getEnvInt("RATE_LIMIT_DEFAULT_LIMIT", 1000),
		DefaultWindow:   getEnvDuration("RATE_LIMIT_DEFAULT_WINDOW", time.Minute),
		CleanupInterval: getEnvDuration("RATE_LIMIT_CLEANUP_INTERVAL", 5*time.Minute),
		Whitelist:       parseIPList(os.Getenv("RATE_LIMIT_WHITELIST")),
		Blacklist:       parseIPList(os.Getenv("RATE_LIMIT_BLACKLIST")),
		EndpointConfigs: DefaultEndpointConfigs(),
	}
}

// DefaultEndpointConfigs returns the per-endpoint policies. LLM-backed
// endpoints get the strictest limits since each request costs model tokens.
func DefaultEndpointConfigs() []EndpointConfig {
	return []EndpointConfig{
		// Tier 1: LLM and quota-heavy operations
		{Path: "/v1/explanations/", Method: "POST", Limit: 30, Window: time.Hour, Burst: 5},
		{Path: "/v1/ingest/", Method: "POST", Limit: 10, Window: time.Hour, Burst: 2},
		{Path: "/v1/enrich/", Method: "POST", Limit: 60, Window: time.Hour, Burst: 5},
		{Path: "/v1/workflow/", Method: "POST", Limit: 4, Window: time.Hour, Burst: 1},
		{Path: "/v1/embeddings/", Method: "POST", Limit: 120, Window: time.Hour, Burst: 10},

		// Tier 2: write operations
		{Path: "/v1/feedback", Method: "POST", Limit: 100, Window: time.Minute, Burst: 10},
		{Path: "/v1/onboarding", Method: "POST", Limit: 30, Window: time.Minute, Burst: 5},
		{Path: "/v1/auth/", Method: "POST", Limit: 20, Window: time.Minute, Burst: 5},

		// Tier 3: reads fall through to the default limit
	}
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func parseIPList(list string) map[string]bool {
	result := map[string]bool{}
	for _, ip := range strings.Split(list, ",") {
		if ip = strings.TrimSpace(ip); ip != "" {
			result[ip] = true
		}
	}
	return result
}
