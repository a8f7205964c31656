// Package ratelimit counts requests per caller in fixed windows.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Decision is the outcome of one CheckAndIncrement call.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	Reset     time.Time
}

// Counter admits or rejects one request for key. Implementations are
// approximate: the in-memory counter is per process and the Redis counter
// does not coordinate window starts.
type Counter interface {
	CheckAndIncrement(ctx context.Context, key string) (Decision, error)
}

// visitor is one caller's fixed window.
type visitor struct {
	remaining int
	reset     time.Time
}

// MemoryCounter keeps windows in a map guarded by a mutex.
type MemoryCounter struct {
	limit  int
	window time.Duration
	now    func() time.Time

	mu       sync.Mutex
	visitors map[string]*visitor
}

// NewMemoryCounter admits limit requests per window for each key.
func NewMemoryCounter(limit int, window time.Duration) *MemoryCounter {
	return &MemoryCounter{
		limit:    limit,
		window:   window,
		now:      time.Now,
		visitors: make(map[string]*visitor),
	}
}

func (m *MemoryCounter) CheckAndIncrement(_ context.Context, key string) (Decision, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	v, exists := m.visitors[key]
	if !exists || !now.Before(v.reset) {
		v = &visitor{remaining: m.limit, reset: now.Add(m.window)}
		m.visitors[key] = v
	}

	d := Decision{Limit: m.limit, Reset: v.reset}
	if v.remaining <= 0 {
		return d, nil
	}
	v.remaining--
	d.Allowed = true
	d.Remaining = v.remaining
	return d, nil
}

// Sweep drops expired windows and returns how many were removed.
func (m *MemoryCounter) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	removed := 0
	for key, v := range m.visitors {
		if !now.Before(v.reset) {
			delete(m.visitors, key)
			removed++
		}
	}
	return removed
}

// StartSweeper runs Sweep every interval until ctx is done.
func (m *MemoryCounter) StartSweeper(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.Sweep()
			}
		}
	}()
}
