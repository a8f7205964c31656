package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "APP_ENV", "LLM_PROVIDER", "LLM_TIMEOUT_MS", "LLM_TEMPERATURE",
		"RATE_LIMIT_REQUESTS", "RATE_LIMIT_WINDOW", "DIAGNOSTICS_ENABLED", "OTEL_ENABLED", "COHERE_MODEL"} {
		t.Setenv(k, "")
	}

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", c.Port)
	assert.Equal(t, "cohere", c.LLMProvider)
	assert.Equal(t, 240*time.Second, c.LLMTimeout)
	assert.InDelta(t, 0.2, c.LLMTemperature, 1e-6)
	assert.Equal(t, 10, c.RateLimitRequests)
	assert.Equal(t, time.Minute, c.RateLimitWindow)
	assert.True(t, c.DiagnosticsEnabled)
	assert.False(t, c.OTelEnabled)
	assert.False(t, c.IsDevelopment())
	assert.Equal(t, "command-a-03-2025", c.ProviderConfig("cohere")["default_model"])
	assert.Empty(t, c.Warnings)
}

func TestLoadOverridesAndWarnings(t *testing.T) {
	t.Setenv("APP_ENV", "Development")
	t.Setenv("LLM_PROVIDER", "OLLAMA")
	t.Setenv("OLLAMA_HOST", "http://gpu:11434")
	t.Setenv("LLM_TIMEOUT_MS", "soon")
	t.Setenv("RATE_LIMIT_WINDOW", "-1s")
	t.Setenv("RATE_LIMIT_REQUESTS", "3")
	t.Setenv("DIAGNOSTICS_ENABLED", "false")

	c, err := Load()
	require.NoError(t, err)
	assert.True(t, c.IsDevelopment())
	assert.Equal(t, "ollama", c.LLMProvider)
	assert.Equal(t, "http://gpu:11434", c.ProviderConfig("ollama")["base_url"])
	assert.Equal(t, 240*time.Second, c.LLMTimeout)
	assert.Equal(t, time.Minute, c.RateLimitWindow)
	assert.Equal(t, 3, c.RateLimitRequests)
	assert.False(t, c.DiagnosticsEnabled)
	assert.Len(t, c.Warnings, 2)
}

func TestLoadRejectsUnknownProvider(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "skynet")
	_, err := Load()
	assert.Error(t, err)
}

func TestProviderConfigIsACopy(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "")
	c, err := Load()
	require.NoError(t, err)
	pc := c.ProviderConfig("gemini")
	pc["api_key"] = "changed"
	assert.NotEqual(t, "changed", c.ProviderConfig("gemini")["api_key"])
}

func TestCurrentConfig(t *testing.T) {
	SetCurrentConfig(&AppConfig{Port: "9999"})
	defer SetCurrentConfig(nil)
	got := GetCurrentConfig()
	got.Port = "1"
	assert.Equal(t, "9999", GetCurrentConfig().Port)
}
