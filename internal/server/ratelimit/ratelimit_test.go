package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *Config {
	return &Config{
		Enabled:       true,
		DefaultLimit:  1000,
		DefaultWindow: time.Minute,
		Whitelist:     map[string]bool{},
		Blacklist:     map[string]bool{},
		EndpointConfigs: []EndpointConfig{
			{Path: "/v1/workflow/", Method: "POST", Limit: 2, Window: time.Hour, Burst: 2},
		},
	}
}

func TestLimiterAllowsWithinBurst(t *testing.T) {
	l := NewLimiter(testConfig())
	defer l.Stop()

	allowed, info := l.Allow("1.2.3.4", "/v1/workflow/refresh", "POST")
	assert.True(t, allowed)
	assert.Equal(t, 2, info.Limit)

	allowed, _ = l.Allow("1.2.3.4", "/v1/workflow/refresh", "POST")
	assert.True(t, allowed)
}

func TestLimiterBlocksBeyondBurst(t *testing.T) {
	l := NewLimiter(testConfig())
	defer l.Stop()

	l.Allow("1.2.3.4", "/v1/workflow/refresh", "POST")
	l.Allow("1.2.3.4", "/v1/workflow/refresh", "POST")
	allowed, info := l.Allow("1.2.3.4", "/v1/workflow/refresh", "POST")

	assert.False(t, allowed)
	assert.Greater(t, info.RetryAfter, time.Duration(0))
}

func TestLimiterIsolatesClients(t *testing.T) {
	l := NewLimiter(testConfig())
	defer l.Stop()

	l.Allow("1.2.3.4", "/v1/workflow/refresh", "POST")
	l.Allow("1.2.3.4", "/v1/workflow/refresh", "POST")

	allowed, _ := l.Allow("5.6.7.8", "/v1/workflow/refresh", "POST")
	assert.True(t, allowed)
}

func TestLimiterWhitelistBypasses(t *testing.T) {
	cfg := testConfig()
	cfg.Whitelist["9.9.9.9"] = true
	l := NewLimiter(cfg)
	defer l.Stop()

	for range 10 {
		allowed, _ := l.Allow("9.9.9.9", "/v1/workflow/refresh", "POST")
		assert.True(t, allowed)
	}
}

func TestLimiterBlacklistBlocks(t *testing.T) {
	cfg := testConfig()
	cfg.Blacklist["6.6.6.6"] = true
	l := NewLimiter(cfg)
	defer l.Stop()

	allowed, _ := l.Allow("6.6.6.6", "/health", "GET")
	assert.False(t, allowed)
}

func TestLimiterDisabled(t *testing.T) {
	l := NewLimiter(&Config{Enabled: false})
	defer l.Stop()

	for range 100 {
		allowed, _ := l.Allow("1.2.3.4", "/v1/workflow/refresh", "POST")
		assert.True(t, allowed)
	}
}

func TestMatchEndpoint(t *testing.T) {
	configs := DefaultEndpointConfigs()

	ec := MatchEndpoint("/v1/explanations/recommendations", "POST", configs)
	require.NotNil(t, ec)
	assert.Equal(t, 30, ec.Limit)

	ec = MatchEndpoint("/v1/feedback", "POST", configs)
	require.NotNil(t, ec)
	assert.Equal(t, 100, ec.Limit)

	assert.Nil(t, MatchEndpoint("/v1/recommendations/user-1", "GET", configs))
}

func TestMatchEndpointHealthUnlimited(t *testing.T) {
	ec := MatchEndpoint("/health", "GET", DefaultEndpointConfigs())
	require.NotNil(t, ec)
	assert.LessOrEqual(t, ec.Limit, 0)
}
