package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"Mansoor88-6/code-activity-agent/internal/database"
	"Mansoor88-6/code-activity-agent/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRepository(t *testing.T) *TimeEntryRepository {
	t.Helper()
	db, err := database.New(filepath.Join(t.TempDir(), "activity.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewTimeEntryRepository(db.DB)
}

func TestTimeEntryRepository_RoundTrip(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.Local)

	entries := []models.TimeEntry{
		{
			ID: "b", Path: "/src/demo/main.rs", Language: "Rust", Project: "demo",
			Duration: 25 * time.Second, StartTime: start, EndTime: start.Add(30 * time.Second),
		},
		{
			ID: "a", Path: "/tmp-notes/x.py", Language: "Python",
			Duration: 1500 * time.Millisecond, StartTime: start.Add(time.Minute), EndTime: start.Add(2 * time.Minute),
		},
	}
	require.NoError(t, repo.InsertBatch(ctx, entries))

	got, err := repo.ListByDay(ctx, "2026-03-02")
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "b", got[0].ID)
	assert.Equal(t, "demo", got[0].Project)
	assert.Equal(t, 25*time.Second, got[0].Duration)
	assert.True(t, got[0].StartTime.Equal(start))
	assert.True(t, got[0].EndTime.Equal(start.Add(30*time.Second)))

	assert.Equal(t, "a", got[1].ID)
	assert.False(t, got[1].HasProject())
	assert.Equal(t, 1500*time.Millisecond, got[1].Duration)
}

func TestTimeEntryRepository_DuplicateIDsIgnored(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.Local)
	e := models.TimeEntry{ID: "same", Path: "a.go", Language: "Go", Duration: time.Minute, StartTime: start, EndTime: start}

	require.NoError(t, repo.InsertBatch(ctx, []models.TimeEntry{e}))
	require.NoError(t, repo.InsertBatch(ctx, []models.TimeEntry{e}))

	day, err := repo.DailyStats(ctx, "2026-03-02")
	require.NoError(t, err)
	assert.Equal(t, time.Minute, day.TotalTime)
}

func TestTimeEntryRepository_DaysAndStats(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	d1 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.Local)
	d2 := time.Date(2026, 3, 2, 12, 0, 0, 0, time.Local)

	require.NoError(t, repo.InsertBatch(ctx, []models.TimeEntry{
		{ID: "1", Path: "a.rs", Language: "Rust", Project: "demo", Duration: 10 * time.Second, StartTime: d1, EndTime: d1},
		{ID: "2", Path: "b.rs", Language: "Rust", Project: "demo", Duration: 5 * time.Second, StartTime: d1, EndTime: d1},
		{ID: "3", Path: "c.go", Language: "Go", Duration: time.Minute, StartTime: d2, EndTime: d2},
	}))

	days, err := repo.Days(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"2026-03-02", "2026-03-01"}, days)

	day, err := repo.DailyStats(ctx, "2026-03-01")
	require.NoError(t, err)
	assert.Equal(t, 15*time.Second, day.TotalTime)
	assert.Equal(t, 15*time.Second, day.ByLanguage["Rust"])
	assert.Equal(t, 15*time.Second, day.ByProject["demo"])

	empty, err := repo.DailyStats(ctx, "2025-01-01")
	require.NoError(t, err)
	assert.Zero(t, empty.TotalTime)
}

func TestTimeEntryRepository_EmptyBatch(t *testing.T) {
	repo := newTestRepository(t)
	assert.NoError(t, repo.InsertBatch(context.Background(), nil))
}
