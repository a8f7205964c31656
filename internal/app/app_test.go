package app

import (
	"context"
	"testing"
	"time"

	"github.com/Corphon/LessonPlanner/internal/config"
	"github.com/Corphon/LessonPlanner/internal/di"
	"github.com/Corphon/LessonPlanner/internal/ratelimit"
	"github.com/Corphon/LessonPlanner/internal/services"
	"github.com/Corphon/LessonPlanner/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.AppConfig {
	return &config.AppConfig{
		Port:        "0",
		AppEnv:      "test",
		DataDir:     t.TempDir(),
		LLMProvider: "ollama",
		LLMTimeout:  time.Second,
		LLMConfig: map[string]map[string]string{
			"ollama": {"base_url": "http://127.0.0.1:1", "default_model": "mistral"},
		},
		RateLimitRequests:  3,
		RateLimitWindow:    time.Minute,
		DiagnosticsEnabled: true,
	}
}

func TestNewRegistersServices(t *testing.T) {
	a, err := New(context.Background(), testConfig(t), utils.NewNopLogger())
	require.NoError(t, err)
	defer a.Close(context.Background())

	for _, name := range []string{
		di.ServiceLesson, di.ServiceInstrument, di.ServiceProgress,
		di.ServiceLLM, di.ServiceMetrics, di.ServiceRateLimiter, di.ServicePolicy, di.ServiceUsage,
	} {
		assert.True(t, a.Container.Has(name), name)
	}

	llmService, err := di.Resolve[*services.LLMService](a.Container, di.ServiceLLM)
	require.NoError(t, err)
	assert.True(t, llmService.IsReady())
	assert.Equal(t, "ollama", llmService.GetProviderName())

	counter, err := di.Resolve[ratelimit.Counter](a.Container, di.ServiceRateLimiter)
	require.NoError(t, err)
	_, isMemory := counter.(*ratelimit.MemoryCounter)
	assert.True(t, isMemory)
}

func TestNewFallsBackWhenRedisUnreachable(t *testing.T) {
	cfg := testConfig(t)
	cfg.RedisAddr = "127.0.0.1:1"

	a, err := New(context.Background(), cfg, utils.NewNopLogger())
	require.NoError(t, err)
	defer a.Close(context.Background())

	counter, err := di.Resolve[ratelimit.Counter](a.Container, di.ServiceRateLimiter)
	require.NoError(t, err)
	_, isMemory := counter.(*ratelimit.MemoryCounter)
	assert.True(t, isMemory)
}

func TestNewRejectsNilConfig(t *testing.T) {
	_, err := New(context.Background(), nil, nil)
	assert.Error(t, err)
}

func TestCloseIsRepeatable(t *testing.T) {
	a, err := New(context.Background(), testConfig(t), utils.NewNopLogger())
	require.NoError(t, err)
	assert.NoError(t, a.Close(context.Background()))
	assert.NoError(t, a.Close(context.Background()))
}
