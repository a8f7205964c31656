// internal/services/usage_service.go
package services

import (
	"context"
	"encoding/json"
	"maps"
	"sync"
	"time"

	"github.com/Corphon/LessonPlanner/internal/storage"
	"github.com/Corphon/LessonPlanner/internal/utils"
)

// UsageFile holds the persisted generation counters.
const UsageFile = "usage_stats.json"

// UsageStats counts generations per day and per outcome.
type UsageStats struct {
	TodayRequests int            `json:"today_requests"`
	DailyStats    map[string]int `json:"daily_stats"`
	Outcomes      map[string]int `json:"outcomes"`
	LastUpdated   time.Time      `json:"last_updated"`
}

// UsageService keeps UsageStats in memory and flushes them to disk in the
// background. A nil storage keeps everything in memory.
type UsageService struct {
	storage *storage.FileStorage
	logger  *utils.Logger
	now     func() time.Time

	mutex        sync.Mutex
	stats        *UsageStats
	isDirty      bool
	lastSaveTime time.Time
	saveInterval time.Duration
}

func NewUsageService(fs *storage.FileStorage, logger *utils.Logger) *UsageService {
	if logger == nil {
		logger = utils.GetLogger()
	}
	s := &UsageService{
		storage:      fs,
		logger:       logger,
		now:          time.Now,
		saveInterval: 30 * time.Second,
	}
	s.stats = s.load()
	return s
}

func newUsageStats(now time.Time) *UsageStats {
	return &UsageStats{
		DailyStats:  make(map[string]int),
		Outcomes:    make(map[string]int),
		LastUpdated: now,
	}
}

// load reads the stats file; a missing or corrupt file starts from zero.
func (s *UsageService) load() *UsageStats {
	now := s.now()
	if s.storage == nil || !s.storage.FileExists(UsageFile) {
		return newUsageStats(now)
	}
	data, err := s.storage.LoadFile(UsageFile)
	if err != nil {
		s.logger.Warn("usage stats unreadable, starting over", "error", err)
		return newUsageStats(now)
	}
	var stats UsageStats
	if err := json.Unmarshal(data, &stats); err != nil {
		s.logger.Warn("usage stats corrupt, starting over", "error", err)
		return newUsageStats(now)
	}
	if stats.DailyStats == nil {
		stats.DailyStats = make(map[string]int)
	}
	if stats.Outcomes == nil {
		stats.Outcomes = make(map[string]int)
	}
	return &stats
}

// rollDay resets the daily counter when the date changed. Caller holds the mutex.
func (s *UsageService) rollDay(now time.Time) {
	if now.Format("2006-01-02") != s.stats.LastUpdated.Format("2006-01-02") {
		s.stats.TodayRequests = 0
		s.stats.LastUpdated = now
		s.isDirty = true
	}
}

// RecordGeneration counts one finished generation with its outcome
// ("ok" or an error type).
func (s *UsageService) RecordGeneration(outcome string) {
	if s == nil {
		return
	}
	s.mutex.Lock()
	defer s.mutex.Unlock()

	now := s.now()
	s.rollDay(now)
	s.stats.TodayRequests++
	s.stats.DailyStats[now.Format("2006-01-02")]++
	s.stats.Outcomes[outcome]++
	s.stats.LastUpdated = now
	s.isDirty = true

	if now.Sub(s.lastSaveTime) > s.saveInterval {
		s.saveUnlocked()
	}
}

// GetUsageStats returns a copy of the current counters.
func (s *UsageService) GetUsageStats() *UsageStats {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.rollDay(s.now())
	return &UsageStats{
		TodayRequests: s.stats.TodayRequests,
		DailyStats:    maps.Clone(s.stats.DailyStats),
		Outcomes:      maps.Clone(s.stats.Outcomes),
		LastUpdated:   s.stats.LastUpdated,
	}
}

func (s *UsageService) saveUnlocked() error {
	if !s.isDirty || s.storage == nil {
		return nil
	}
	if err := s.storage.SaveJSON(UsageFile, s.stats); err != nil {
		s.logger.Warn("usage stats save failed", "error", err)
		return err
	}
	s.isDirty = false
	s.lastSaveTime = s.now()
	return nil
}

// StartPeriodicSave flushes pending counters every save interval until ctx ends.
func (s *UsageService) StartPeriodicSave(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(s.saveInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.mutex.Lock()
				s.saveUnlocked()
				s.mutex.Unlock()
			}
		}
	}()
}

// Close writes any pending counters.
func (s *UsageService) Close() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.saveUnlocked()
}
