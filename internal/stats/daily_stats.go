package stats

import (
	"sort"
	"time"

	"Mansoor88-6/code-activity-agent/internal/models"
)

// DateLayout is the calendar-date key format, in the process-local time zone
const DateLayout = "2006-01-02"

// DateKey returns the local calendar date of t
func DateKey(t time.Time) string {
	return t.Local().Format(DateLayout)
}

// DailyStats holds one day's totals. TotalTime always equals the sum of ByLanguage;
// ByProject leaves out entries without a project.
type DailyStats struct {
	Date       string                   `json:"date"`
	TotalTime  time.Duration            `json:"total_time"`
	ByLanguage map[string]time.Duration `json:"by_language"`
	ByProject  map[string]time.Duration `json:"by_project"`
	ByFile     map[string]time.Duration `json:"by_file"`
}

func NewDailyStats(date string) *DailyStats {
	return &DailyStats{
		Date:       date,
		ByLanguage: make(map[string]time.Duration),
		ByProject:  make(map[string]time.Duration),
		ByFile:     make(map[string]time.Duration),
	}
}

// AddEntry folds entry into the totals. Adding the same entry twice counts it twice.
func (s *DailyStats) AddEntry(entry models.TimeEntry) {
	s.TotalTime += entry.Duration
	s.ByLanguage[entry.Language] += entry.Duration
	s.ByFile[entry.Path] += entry.Duration
	if entry.HasProject() {
		s.ByProject[entry.Project] += entry.Duration
	}
}

func (s *DailyStats) Clone() *DailyStats {
	c := NewDailyStats(s.Date)
	c.TotalTime = s.TotalTime
	for k, v := range s.ByLanguage {
		c.ByLanguage[k] = v
	}
	for k, v := range s.ByProject {
		c.ByProject[k] = v
	}
	for k, v := range s.ByFile {
		c.ByFile[k] = v
	}
	return c
}

// Item is one key of a breakdown with its accumulated time
type Item struct {
	Key      string        `json:"key"`
	Duration time.Duration `json:"duration"`
}

// Ranked returns the breakdown ordered by descending duration, then key
func Ranked(m map[string]time.Duration) []Item {
	items := make([]Item, 0, len(m))
	for k, v := range m {
		items = append(items, Item{Key: k, Duration: v})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Duration != items[j].Duration {
			return items[i].Duration > items[j].Duration
		}
		return items[i].Key < items[j].Key
	})
	return items
}
