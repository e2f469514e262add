package session

import (
	"time"

	"Mansoor88-6/code-activity-agent/internal/models"

	"github.com/google/uuid"
)

// FileSession accumulates active editing time for one file across pause/resume
// cycles. SegmentStart is set exactly when the session is Active.
type FileSession struct {
	ID            string
	Path          string
	Language      string
	Project       string
	TotalDuration time.Duration
	SegmentStart  *time.Time
	Active        bool
	StartedAt     time.Time
	LastActivity  time.Time
}

func newFileSession(path, language, project string, now time.Time) *FileSession {
	start := now
	return &FileSession{
		ID:           uuid.NewString(),
		Path:         path,
		Language:     language,
		Project:      project,
		SegmentStart: &start,
		Active:       true,
		StartedAt:    now,
		LastActivity: now,
	}
}

// CurrentDuration returns the folded total plus the running segment, if any
func (s *FileSession) CurrentDuration(now time.Time) time.Duration {
	if !s.Active || s.SegmentStart == nil {
		return s.TotalDuration
	}
	return s.TotalDuration + segment(*s.SegmentStart, now)
}

// pause folds the running segment, ended at the given instant, into the total
func (s *FileSession) pause(at time.Time) {
	if !s.Active {
		return
	}
	s.TotalDuration += segment(*s.SegmentStart, at)
	s.SegmentStart = nil
	s.Active = false
}

func (s *FileSession) resume(at time.Time) {
	start := at
	s.SegmentStart = &start
	s.Active = true
	s.LastActivity = at
}

func (s *FileSession) toEntry(end time.Time) models.TimeEntry {
	s.pause(end)
	return models.TimeEntry{
		ID:        s.ID,
		Path:      s.Path,
		Language:  s.Language,
		Project:   s.Project,
		Duration:  s.TotalDuration,
		StartTime: s.StartedAt,
		EndTime:   end,
	}
}

func (s *FileSession) clone() FileSession {
	c := *s
	if s.SegmentStart != nil {
		start := *s.SegmentStart
		c.SegmentStart = &start
	}
	return c
}

// segment never goes negative if the wall clock stepped backwards
func segment(start, end time.Time) time.Duration {
	if d := end.Sub(start); d > 0 {
		return d
	}
	return 0
}
