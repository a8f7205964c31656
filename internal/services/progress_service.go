// internal/services/progress_service.go
package services

import (
	"context"
	"fmt"
	"sync"
	"time"
)

const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Stage is a pipeline checkpoint with its progress percentage.
type Stage struct {
	Name     string
	Progress int
	Message  string
}

var (
	StageValidated = Stage{"validated", 10, "Solicitud validada"}
	StagePrompt    = Stage{"prompt", 20, "Prompt construido"}
	StageModel     = Stage{"model", 30, "Consultando al modelo"}
	StageRecovered = Stage{"recovered", 70, "Respuesta del modelo interpretada"}
	StagePolicy    = Stage{"policy", 85, "Contenido depurado"}
	StageStructure = Stage{"structure", 90, "Estructura de la sesión verificada"}
)

// ProgressUpdate is one frame sent to subscribers.
type ProgressUpdate struct {
	Progress int    `json:"progress"`
	Message  string `json:"message"`
	Status   string `json:"status"`
}

// ProgressTracker follows one generation task.
type ProgressTracker struct {
	TaskID      string
	Progress    int
	Message     string
	Status      string
	StartTime   time.Time
	UpdateTime  time.Time
	Subscribers map[chan ProgressUpdate]bool
	Done        chan struct{}
	mutex       sync.Mutex
}

// ProgressService owns every live tracker.
type ProgressService struct {
	trackers map[string]*ProgressTracker
	mutex    sync.RWMutex
}

func NewProgressService() *ProgressService {
	return &ProgressService{
		trackers: make(map[string]*ProgressTracker),
	}
}

// CreateTracker returns the tracker for taskID, creating it when missing.
func (s *ProgressService) CreateTracker(taskID string) *ProgressTracker {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if tracker, exists := s.trackers[taskID]; exists {
		return tracker
	}

	now := time.Now()
	tracker := &ProgressTracker{
		TaskID:      taskID,
		Message:     "Iniciando generación...",
		Status:      StatusRunning,
		StartTime:   now,
		UpdateTime:  now,
		Subscribers: make(map[chan ProgressUpdate]bool),
		Done:        make(chan struct{}),
	}
	s.trackers[taskID] = tracker
	return tracker
}

func (s *ProgressService) GetTracker(taskID string) (*ProgressTracker, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	tracker, exists := s.trackers[taskID]
	return tracker, exists
}

// Len returns the number of tracked tasks.
func (s *ProgressService) Len() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.trackers)
}

// Advance moves the tracker to stage. A nil tracker is ignored.
func (t *ProgressTracker) Advance(stage Stage) {
	if t == nil {
		return
	}
	t.UpdateProgress(stage.Progress, stage.Message)
}

// UpdateProgress raises the percentage; it never goes backwards.
func (t *ProgressTracker) UpdateProgress(progress int, message string) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	if t.Status != StatusRunning {
		return
	}
	if progress > t.Progress {
		t.Progress = progress
	}
	if message != "" {
		t.Message = message
	}
	t.UpdateTime = time.Now()
	t.broadcast()
}

// Complete marks the task done at 100%.
func (t *ProgressTracker) Complete(message string) {
	if t == nil {
		return
	}
	t.mutex.Lock()
	defer t.mutex.Unlock()

	if t.Status != StatusRunning {
		return
	}
	t.Progress = 100
	if message == "" {
		message = "Sesión generada"
	}
	t.Message = message
	t.Status = StatusCompleted
	t.UpdateTime = time.Now()
	t.broadcast()
	close(t.Done)
}

// Fail marks the task failed, keeping the last percentage.
func (t *ProgressTracker) Fail(errorMsg string) {
	if t == nil {
		return
	}
	t.mutex.Lock()
	defer t.mutex.Unlock()

	if t.Status != StatusRunning {
		return
	}
	t.Message = fmt.Sprintf("Error: %s", errorMsg)
	t.Status = StatusFailed
	t.UpdateTime = time.Now()
	t.broadcast()
	close(t.Done)
}

// broadcast must be called with the mutex held. Full subscribers miss the frame.
func (t *ProgressTracker) broadcast() {
	update := t.snapshot()
	for subscriber := range t.Subscribers {
		select {
		case subscriber <- update:
		default:
		}
	}
}

func (t *ProgressTracker) snapshot() ProgressUpdate {
	return ProgressUpdate{Progress: t.Progress, Message: t.Message, Status: t.Status}
}

// Snapshot returns the current state.
func (t *ProgressTracker) Snapshot() ProgressUpdate {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	return t.snapshot()
}

// Subscribe returns a buffered channel primed with the current state.
func (t *ProgressTracker) Subscribe() chan ProgressUpdate {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	subscriber := make(chan ProgressUpdate, 10)
	t.Subscribers[subscriber] = true
	subscriber <- t.snapshot()
	return subscriber
}

func (t *ProgressTracker) Unsubscribe(subscriber chan ProgressUpdate) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	if _, ok := t.Subscribers[subscriber]; !ok {
		return
	}
	delete(t.Subscribers, subscriber)
	close(subscriber)
}

// CleanupCompletedTasks drops finished trackers idle for longer than maxAge.
func (s *ProgressService) CleanupCompletedTasks(maxAge time.Duration) int {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	now := time.Now()
	removed := 0
	for id, tracker := range s.trackers {
		tracker.mutex.Lock()
		finished := tracker.Status != StatusRunning
		old := now.Sub(tracker.UpdateTime) > maxAge
		tracker.mutex.Unlock()

		if finished && old {
			delete(s.trackers, id)
			removed++
		}
	}
	return removed
}

// StartCleanup sweeps finished trackers every interval until ctx ends.
func (s *ProgressService) StartCleanup(ctx context.Context, interval, maxAge time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.CleanupCompletedTasks(maxAge)
			}
		}
	}()
}
