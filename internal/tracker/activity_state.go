package tracker

import (
	"sync"
	"time"

	"Mansoor88-6/code-activity-agent/internal/guard"
)

// ActivityState is the last-input timestamp and idle flag of the user.
// The zero value is active with no recorded input.
type ActivityState struct {
	LastActivity time.Time
	Idle         bool
}

// HasActivity reports whether any input has been recorded
func (s ActivityState) HasActivity() bool {
	return !s.LastActivity.IsZero()
}

// TimeSinceLastActivity returns the time elapsed since the last input, if any
func (s ActivityState) TimeSinceLastActivity(now time.Time) (time.Duration, bool) {
	if !s.HasActivity() {
		return 0, false
	}
	return now.Sub(s.LastActivity), true
}

// IsRecentlyActive reports whether input happened within the given duration
func (s ActivityState) IsRecentlyActive(now time.Time, within time.Duration) bool {
	elapsed, ok := s.TimeSinceLastActivity(now)
	return ok && elapsed <= within
}

// SharedState is the single process-wide ActivityState handle. Every mutation goes
// through one mutex, so an input event and an idle check never interleave.
type SharedState struct {
	mu    sync.RWMutex
	state ActivityState
	latch guard.Latch
}

func NewSharedState() *SharedState {
	return &SharedState{}
}

// Snapshot returns a copy of the current state
func (s *SharedState) Snapshot() (ActivityState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.latch.Err(); err != nil {
		return ActivityState{}, err
	}
	return s.state, nil
}

// update runs fn with exclusive access to the state. A panic in fn poisons the
// state and is returned as guard.ErrPoisoned.
func (s *SharedState) update(fn func(st *ActivityState)) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.latch.Err(); err != nil {
		return err
	}
	defer s.latch.Recover(&err)

	fn(&s.state)
	return nil
}
