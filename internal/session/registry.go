package session

import (
	"sort"
	"sync"
	"time"

	"Mansoor88-6/code-activity-agent/internal/guard"
	"Mansoor88-6/code-activity-agent/internal/models"

	"go.uber.org/zap"
)

// Transition is what a file event did to the file's session
type Transition int

const (
	TransitionCreated Transition = iota + 1
	TransitionResumed
	TransitionHeartbeat
)

func (t Transition) String() string {
	switch t {
	case TransitionCreated:
		return "created"
	case TransitionResumed:
		return "resumed"
	case TransitionHeartbeat:
		return "heartbeat"
	default:
		return "none"
	}
}

// EntrySink receives every closed session exactly once
type EntrySink func(entry models.TimeEntry)

// Registry owns the live FileSessions and merges file events with activity events.
// All mutations hold one lock; duration queries take the read lock. Closed entries
// are handed to the sink after the lock is released.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*FileSession
	latch    guard.Latch
	sink     EntrySink
	now      func() time.Time
	logger   *zap.Logger
}

// NewRegistry creates an empty registry. sink may be nil.
func NewRegistry(sink EntrySink, logger *zap.Logger) *Registry {
	return &Registry{
		sessions: make(map[string]*FileSession),
		sink:     sink,
		now:      time.Now,
		logger:   logger,
	}
}

// OnFileEvent records a debounced modification of path. A missing session is
// created, a paused one resumed, and an active one only has its LastActivity refreshed.
func (r *Registry) OnFileEvent(path, language, project string) (Transition, error) {
	var tr Transition
	_, err := r.mutate(func(now time.Time) []models.TimeEntry {
		s, ok := r.sessions[path]
		switch {
		case !ok:
			r.sessions[path] = newFileSession(path, language, project, now)
			tr = TransitionCreated
		case !s.Active:
			s.resume(now)
			tr = TransitionResumed
		default:
			s.LastActivity = now
			tr = TransitionHeartbeat
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	if tr != TransitionHeartbeat {
		r.logger.Debug("File session "+tr.String(),
			zap.String("path", path),
			zap.String("language", language),
			zap.String("project", project),
		)
	}
	return tr, nil
}

// OnIdleDetected pauses every active session and returns how many were paused
func (r *Registry) OnIdleDetected() (int, error) {
	paused := 0
	_, err := r.mutate(func(now time.Time) []models.TimeEntry {
		for _, s := range r.sessions {
			if s.Active {
				s.pause(now)
				paused++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if paused > 0 {
		r.logger.Info("Paused sessions on idle", zap.Int("count", paused))
	}
	return paused, nil
}

// OnActivityResumed leaves sessions untouched: a paused session only resumes on
// its own next file event, since input alone does not prove work on that file.
func (r *Registry) OnActivityResumed() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.latch.Err()
}

// PauseStale pauses active sessions whose file has not changed for at least
// timeout. The segment ends now, so time already reported by CurrentDuration
// is never taken back.
func (r *Registry) PauseStale(timeout time.Duration) (int, error) {
	paused := 0
	_, err := r.mutate(func(now time.Time) []models.TimeEntry {
		for _, s := range r.sessions {
			if s.Active && now.Sub(s.LastActivity) >= timeout {
				s.pause(now)
				paused++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if paused > 0 {
		r.logger.Debug("Paused stale sessions", zap.Int("count", paused), zap.Duration("timeout", timeout))
	}
	return paused, nil
}

// CurrentDuration returns the accumulated duration of the live session for path
// without changing it. ok is false when no session exists.
func (r *Registry) CurrentDuration(path string) (time.Duration, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if err := r.latch.Err(); err != nil {
		return 0, false, err
	}

	s, found := r.sessions[path]
	if !found {
		return 0, false, nil
	}
	return s.CurrentDuration(r.now()), true, nil
}

// Close ends the session for path and emits its TimeEntry
func (r *Registry) Close(path string) (bool, error) {
	entries, err := r.mutate(func(now time.Time) []models.TimeEntry {
		s, ok := r.sessions[path]
		if !ok {
			return nil
		}
		delete(r.sessions, path)
		return []models.TimeEntry{s.toEntry(now)}
	})
	return len(entries) > 0, err
}

// CloseAll ends every live session, as on shutdown or day rollover
func (r *Registry) CloseAll() (int, error) {
	entries, err := r.mutate(func(now time.Time) []models.TimeEntry {
		entries := make([]models.TimeEntry, 0, len(r.sessions))
		for path, s := range r.sessions {
			entries = append(entries, s.toEntry(now))
			delete(r.sessions, path)
		}
		return entries
	})
	if len(entries) > 0 {
		r.logger.Info("Closed all sessions", zap.Int("count", len(entries)))
	}
	return len(entries), err
}

// Snapshot returns copies of the live sessions ordered by path
func (r *Registry) Snapshot() ([]FileSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if err := r.latch.Err(); err != nil {
		return nil, err
	}

	out := make([]FileSession, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s.clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

// Len returns the number of live sessions
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// mutate runs fn under the write lock and forwards the entries it closed to the sink
func (r *Registry) mutate(fn func(now time.Time) []models.TimeEntry) ([]models.TimeEntry, error) {
	entries, err := r.locked(fn)
	if err != nil {
		return nil, err
	}

	for _, e := range entries {
		r.logger.Debug("File session closed",
			zap.String("path", e.Path),
			zap.Duration("duration", e.Duration),
		)
		if r.sink != nil {
			r.sink(e)
		}
	}
	return entries, nil
}

func (r *Registry) locked(fn func(now time.Time) []models.TimeEntry) (entries []models.TimeEntry, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.latch.Err(); err != nil {
		return nil, err
	}
	defer r.latch.Recover(&err)

	return fn(r.now()), nil
}
