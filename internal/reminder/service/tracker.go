package service

import (
	"sync"
	"time"
)

// SweepTracker spaces out sweep runs. Two triggers landing close
// together (a cron overlap, an operator double-click) would double-send
// reminders that the per-debt guard alone cannot catch mid-flight, so
// the second run is rejected outright.
type SweepTracker struct {
	mu      sync.Mutex
	lastRun time.Time
	running bool
}

func NewSweepTracker() *SweepTracker {
	return &SweepTracker{}
}

// TryStart reserves the tracker for one run. It fails when a run is
// already in flight or the previous run finished less than minGap ago.
func (t *SweepTracker) TryStart(now time.Time, minGap time.Duration) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running {
		return false
	}
	if !t.lastRun.IsZero() && now.Sub(t.lastRun) < minGap {
		return false
	}
	t.running = true
	return true
}

// Finish releases the tracker and records the completion time.
func (t *SweepTracker) Finish(now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.running = false
	t.lastRun = now
}
