package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressTrackerLifecycle(t *testing.T) {
	svc := NewProgressService()
	tr := svc.CreateTracker("task-1")
	assert.Same(t, tr, svc.CreateTracker("task-1"))

	sub := tr.Subscribe()
	first := <-sub
	assert.Equal(t, StatusRunning, first.Status)
	assert.Equal(t, 0, first.Progress)

	tr.Advance(StagePrompt)
	tr.Advance(StageValidated)
	got := <-sub
	assert.Equal(t, 20, got.Progress)
	got = <-sub
	assert.Equal(t, 20, got.Progress, "progress never goes backwards")

	tr.Complete("")
	got = <-sub
	assert.Equal(t, ProgressUpdate{Progress: 100, Message: "Sesión generada", Status: StatusCompleted}, got)

	select {
	case <-tr.Done:
	default:
		t.Fatal("done channel not closed")
	}

	// A second terminal call is a no-op.
	tr.Fail("late")
	assert.Equal(t, StatusCompleted, tr.Snapshot().Status)

	tr.Unsubscribe(sub)
	tr.Unsubscribe(sub)
}

func TestProgressTrackerFail(t *testing.T) {
	tr := NewProgressService().CreateTracker("task-2")
	tr.Advance(StageModel)
	tr.Fail("timeout")

	s := tr.Snapshot()
	assert.Equal(t, StatusFailed, s.Status)
	assert.Equal(t, 30, s.Progress)
	assert.Contains(t, s.Message, "timeout")
}

func TestNilTrackerIsIgnored(t *testing.T) {
	var tr *ProgressTracker
	assert.NotPanics(t, func() {
		tr.Advance(StageModel)
		tr.Complete("ok")
		tr.Fail("x")
	})
}

func TestCleanupCompletedTasks(t *testing.T) {
	svc := NewProgressService()
	done := svc.CreateTracker("done")
	done.Complete("")
	svc.CreateTracker("running")

	assert.Equal(t, 0, svc.CleanupCompletedTasks(time.Hour))
	time.Sleep(5 * time.Millisecond)
	assert.Equal(t, 1, svc.CleanupCompletedTasks(time.Millisecond))

	_, ok := svc.GetTracker("done")
	assert.False(t, ok)
	_, ok = svc.GetTracker("running")
	require.True(t, ok)
	assert.Equal(t, 1, svc.Len())
}
