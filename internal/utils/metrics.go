// internal/utils/metrics.go
package utils

import (
	"sync"
	"sync/atomic"
	"time"
)

// MetricsCollector keeps process-local counters and duration histograms.
type MetricsCollector struct {
	counters   map[string]*int64
	histograms map[string]*Histogram

	mu sync.RWMutex
}

// Histogram tracks count, sum, min and max of recorded values.
type Histogram struct {
	count int64
	sum   int64
	min   int64
	max   int64
	mu    sync.Mutex
}

var (
	globalMetrics *MetricsCollector
	metricsOnce   sync.Once
)

// NewMetricsCollector returns an empty collector.
func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{
		counters:   make(map[string]*int64),
		histograms: make(map[string]*Histogram),
	}
}

// GetMetricsCollector returns the process-wide collector.
func GetMetricsCollector() *MetricsCollector {
	metricsOnce.Do(func() {
		globalMetrics = NewMetricsCollector()
	})
	return globalMetrics
}

func (m *MetricsCollector) IncrementCounter(name string) {
	m.AddCounter(name, 1)
}

func (m *MetricsCollector) AddCounter(name string, value int64) {
	m.mu.RLock()
	c, ok := m.counters[name]
	m.mu.RUnlock()
	if !ok {
		m.mu.Lock()
		if c, ok = m.counters[name]; !ok {
			c = new(int64)
			m.counters[name] = c
		}
		m.mu.Unlock()
	}
	atomic.AddInt64(c, value)
}

func (m *MetricsCollector) GetCounterValue(name string) int64 {
	m.mu.RLock()
	c, ok := m.counters[name]
	m.mu.RUnlock()
	if !ok {
		return 0
	}
	return atomic.LoadInt64(c)
}

func (m *MetricsCollector) RecordHistogram(name string, value int64) {
	m.mu.RLock()
	h, ok := m.histograms[name]
	m.mu.RUnlock()
	if !ok {
		m.mu.Lock()
		if h, ok = m.histograms[name]; !ok {
			h = &Histogram{min: value, max: value}
			m.histograms[name] = h
		}
		m.mu.Unlock()
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	if value < h.min {
		h.min = value
	}
	if value > h.max {
		h.max = value
	}
}

// GetMetrics returns a snapshot suitable for JSON encoding.
func (m *MetricsCollector) GetMetrics() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	counters := make(map[string]int64, len(m.counters))
	for name, c := range m.counters {
		counters[name] = atomic.LoadInt64(c)
	}

	histograms := make(map[string]map[string]int64, len(m.histograms))
	for name, h := range m.histograms {
		h.mu.Lock()
		histograms[name] = map[string]int64{
			"count": h.count,
			"sum":   h.sum,
			"min":   h.min,
			"max":   h.max,
		}
		h.mu.Unlock()
	}

	return map[string]interface{}{
		"counters":   counters,
		"histograms": histograms,
	}
}

// PipelineMetrics records generation pipeline events on a collector.
type PipelineMetrics struct {
	metrics *MetricsCollector
}

func NewPipelineMetrics(m *MetricsCollector) *PipelineMetrics {
	if m == nil {
		m = GetMetricsCollector()
	}
	return &PipelineMetrics{metrics: m}
}

// RecordStage counts a finished pipeline stage and its duration.
func (pm *PipelineMetrics) RecordStage(stage string, d time.Duration, err error) {
	pm.metrics.IncrementCounter("stage_" + stage + "_total")
	if err != nil {
		pm.metrics.IncrementCounter("stage_" + stage + "_failed")
	}
	pm.metrics.RecordHistogram("stage_"+stage+"_ms", d.Milliseconds())
}

// RecordRecovery counts which JSON recovery strategy produced the document.
func (pm *PipelineMetrics) RecordRecovery(strategy string) {
	pm.metrics.IncrementCounter("recovery_" + strategy)
}

// RecordProviderCall counts a model call per provider.
func (pm *PipelineMetrics) RecordProviderCall(provider string, d time.Duration, err error) {
	pm.metrics.IncrementCounter("provider_" + provider + "_calls")
	if err != nil {
		pm.metrics.IncrementCounter("provider_" + provider + "_errors")
	}
	pm.metrics.RecordHistogram("provider_"+provider+"_ms", d.Milliseconds())
}

// RecordOutcome counts finished requests by error type, "ok" on success.
func (pm *PipelineMetrics) RecordOutcome(kind string) {
	pm.metrics.IncrementCounter("requests_total")
	pm.metrics.IncrementCounter("requests_" + kind)
}
