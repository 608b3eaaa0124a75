package session

import (
	"context"
	"sync"
	"time"
)

// Timer drives the session's one-second cadence. It calls Tick on each beat
// and, when the countdown reaches zero, calls Finish exactly once. It stops
// on its own as soon as the session leaves InProgress, so a completed
// attempt never sees a stray tick.
type Timer struct {
	session  *Session
	interval time.Duration

	mu          sync.Mutex
	lastElapsed int
	finished    bool
}

// NewTimer returns a timer on the standard one-second cadence.
func NewTimer(s *Session) *Timer {
	return NewTimerWithInterval(s, time.Second)
}

// NewTimerWithInterval shortens the cadence for tests.
func NewTimerWithInterval(s *Session, interval time.Duration) *Timer {
	return &Timer{session: s, interval: interval}
}

// Run blocks until the countdown expires, the session leaves InProgress, or
// ctx is cancelled. Call it from its own goroutine after Start.
func (t *Timer) Run(ctx context.Context) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			t.capture()
			return
		case <-ticker.C:
			remaining, err := t.session.Tick()
			if err != nil {
				// Phase left InProgress between beats; stop quietly.
				return
			}
			t.capture()
			if remaining == 0 {
				t.finishOnce()
				return
			}
		}
	}
}

// Elapsed reports the stopwatch value captured at the last beat. It stays
// readable after the session is torn down by Retake.
func (t *Timer) Elapsed() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastElapsed
}

func (t *Timer) capture() {
	elapsed := t.session.ElapsedSeconds()
	t.mu.Lock()
	t.lastElapsed = elapsed
	t.mu.Unlock()
}

func (t *Timer) finishOnce() {
	t.mu.Lock()
	already := t.finished
	t.finished = true
	t.mu.Unlock()
	if already {
		return
	}
	// A submit on the last question can complete the session in the same
	// instant; Finish rejecting with ErrInvalidTransition is fine then.
	_ = t.session.Finish()
}
