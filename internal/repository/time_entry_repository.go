package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"Mansoor88-6/code-activity-agent/internal/models"
	"Mansoor88-6/code-activity-agent/internal/stats"
)

// TimeEntryRepository stores closed time entries. Times are kept as Unix
// milliseconds; day is the local calendar date of the start time.
type TimeEntryRepository struct {
	db *sql.DB
}

func NewTimeEntryRepository(db *sql.DB) *TimeEntryRepository {
	return &TimeEntryRepository{db: db}
}

// InsertBatch stores entries in one transaction. Re-inserting an entry with an
// existing ID is ignored, so a retried batch is not counted twice.
func (r *TimeEntryRepository) InsertBatch(ctx context.Context, entries []models.TimeEntry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO time_entries (id, path, language, project, duration_ms, start_time, end_time, day)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		project := sql.NullString{String: e.Project, Valid: e.HasProject()}
		_, err := stmt.ExecContext(ctx,
			e.ID,
			e.Path,
			e.Language,
			project,
			e.Duration.Milliseconds(),
			e.StartTime.UnixMilli(),
			e.EndTime.UnixMilli(),
			stats.DateKey(e.StartTime),
		)
		if err != nil {
			return fmt.Errorf("failed to insert time entry %s: %w", e.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit time entries: %w", err)
	}
	return nil
}

// ListByDay returns the entries of one calendar day ordered by start time
func (r *TimeEntryRepository) ListByDay(ctx context.Context, day string) ([]models.TimeEntry, error) {
	query := `
		SELECT id, path, language, project, duration_ms, start_time, end_time
		FROM time_entries
		WHERE day = ?
		ORDER BY start_time, id
	`

	rows, err := r.db.QueryContext(ctx, query, day)
	if err != nil {
		return nil, fmt.Errorf("failed to query time entries: %w", err)
	}
	defer rows.Close()

	var entries []models.TimeEntry
	for rows.Next() {
		var (
			entry                  models.TimeEntry
			project                sql.NullString
			durationMS, start, end int64
		)
		err := rows.Scan(
			&entry.ID,
			&entry.Path,
			&entry.Language,
			&project,
			&durationMS,
			&start,
			&end,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan time entry: %w", err)
		}
		entry.Project = project.String
		entry.Duration = time.Duration(durationMS) * time.Millisecond
		entry.StartTime = time.UnixMilli(start)
		entry.EndTime = time.UnixMilli(end)
		entries = append(entries, entry)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return entries, nil
}

// Days returns every day with stored entries, most recent first
func (r *TimeEntryRepository) Days(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT day FROM time_entries ORDER BY day DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query days: %w", err)
	}
	defer rows.Close()

	var days []string
	for rows.Next() {
		var day string
		if err := rows.Scan(&day); err != nil {
			return nil, fmt.Errorf("failed to scan day: %w", err)
		}
		days = append(days, day)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return days, nil
}

// DailyStats rebuilds the totals of one day from stored entries
func (r *TimeEntryRepository) DailyStats(ctx context.Context, day string) (*stats.DailyStats, error) {
	entries, err := r.ListByDay(ctx, day)
	if err != nil {
		return nil, err
	}
	return stats.FromEntries(entries).Day(day), nil
}
