package stats

import (
	"sort"
	"sync"

	"Mansoor88-6/code-activity-agent/internal/models"
)

// Aggregator keeps one DailyStats per calendar date. An entry belongs to the
// date its StartTime falls on.
type Aggregator struct {
	mu   sync.Mutex
	days map[string]*DailyStats
}

func NewAggregator() *Aggregator {
	return &Aggregator{days: make(map[string]*DailyStats)}
}

// AddEntry folds entry into its day's totals
func (a *Aggregator) AddEntry(entry models.TimeEntry) {
	date := DateKey(entry.StartTime)

	a.mu.Lock()
	defer a.mu.Unlock()

	day, ok := a.days[date]
	if !ok {
		day = NewDailyStats(date)
		a.days[date] = day
	}
	day.AddEntry(entry)
}

// Day returns a copy of the totals for date, or empty totals for a day without entries
func (a *Aggregator) Day(date string) *DailyStats {
	a.mu.Lock()
	defer a.mu.Unlock()

	if day, ok := a.days[date]; ok {
		return day.Clone()
	}
	return NewDailyStats(date)
}

// Dates returns the dates with recorded entries, oldest first
func (a *Aggregator) Dates() []string {
	a.mu.Lock()
	defer a.mu.Unlock()

	dates := make([]string, 0, len(a.days))
	for d := range a.days {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	return dates
}

// FromEntries rebuilds daily totals from stored entries
func FromEntries(entries []models.TimeEntry) *Aggregator {
	a := NewAggregator()
	for _, e := range entries {
		a.AddEntry(e)
	}
	return a
}
