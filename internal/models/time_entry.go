package models

import "time"

// TimeEntry is the immutable record of a closed file session.
// Duration is the sum of the session's active segments, not EndTime - StartTime.
type TimeEntry struct {
	ID        string        `json:"id"`
	Path      string        `json:"path"`
	Language  string        `json:"language"`
	Project   string        `json:"project,omitempty"` // empty when no project root was found
	Duration  time.Duration `json:"duration"`
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
}

// HasProject reports whether the entry is attributed to a project
func (e TimeEntry) HasProject() bool {
	return e.Project != ""
}
