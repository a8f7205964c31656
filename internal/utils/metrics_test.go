package utils

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCountersAreConcurrencySafe(t *testing.T) {
	m := NewMetricsCollector()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.IncrementCounter("hits")
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(50), m.GetCounterValue("hits"))
	assert.Equal(t, int64(0), m.GetCounterValue("missing"))
}

func TestHistogramSnapshot(t *testing.T) {
	m := NewMetricsCollector()
	m.RecordHistogram("lat", 5)
	m.RecordHistogram("lat", 1)
	m.RecordHistogram("lat", 9)

	h := m.GetMetrics()["histograms"].(map[string]map[string]int64)["lat"]
	assert.Equal(t, int64(3), h["count"])
	assert.Equal(t, int64(15), h["sum"])
	assert.Equal(t, int64(1), h["min"])
	assert.Equal(t, int64(9), h["max"])
}

func TestPipelineMetrics(t *testing.T) {
	m := NewMetricsCollector()
	pm := NewPipelineMetrics(m)

	pm.RecordStage("recover", 3*time.Millisecond, nil)
	pm.RecordStage("recover", time.Millisecond, errors.New("no json"))
	pm.RecordRecovery("balanced")
	pm.RecordProviderCall("cohere", time.Second, nil)
	pm.RecordOutcome("ok")

	assert.Equal(t, int64(2), m.GetCounterValue("stage_recover_total"))
	assert.Equal(t, int64(1), m.GetCounterValue("stage_recover_failed"))
	assert.Equal(t, int64(1), m.GetCounterValue("recovery_balanced"))
	assert.Equal(t, int64(1), m.GetCounterValue("provider_cohere_calls"))
	assert.Equal(t, int64(0), m.GetCounterValue("provider_cohere_errors"))
	assert.Equal(t, int64(1), m.GetCounterValue("requests_ok"))
}

func TestRedactHidesSecrets(t *testing.T) {
	out := redact([]interface{}{"api_key", "sk-123", "stage", "recover", "DATABASE_DSN", "postgres://"})
	assert.Equal(t, "[REDACTED]", out[1])
	assert.Equal(t, "recover", out[3])
	assert.Equal(t, "[REDACTED]", out[5])
}
