package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/nOkuda/participation-tracker/internal/models"
)

// dayBounds returns the half-open [start, end) window covering the calendar
// day that contains t in the given location.
func dayBounds(t time.Time, loc *time.Location) (time.Time, time.Time) {
	local := t.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}

// EventsOn returns the student's events whose timestamps fall on the given
// calendar day, in chronological order. An empty day yields an empty slice,
// not an error.
func EventsOn(ctx context.Context, database *sql.DB, studentID int64, day time.Time, loc *time.Location) ([]models.Event, error) {
	ok, err := studentExists(ctx, database, studentID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrUnknownStudent
	}

	start, end := dayBounds(day, loc)
	rows, err := database.QueryContext(ctx, `
SELECT e.id, e.student_id, e.category_id, c.name, e.first_entered, e.satisfactory
FROM events e
JOIN categories c ON c.id = e.category_id
WHERE e.student_id = $1 AND e.first_entered >= $2 AND e.first_entered < $3
ORDER BY e.first_entered`, studentID, start, end)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	out := []models.Event{}
	for rows.Next() {
		var e models.Event
		if err := rows.Scan(&e.ID, &e.StudentID, &e.CategoryID, &e.CategoryName, &e.FirstEntered, &e.Satisfactory); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// ApplyCorrections flips the satisfactory flag on a batch of the student's
// events from the given calendar day. The window is re-read inside the
// transaction, and an edit referencing an event outside it aborts the whole
// batch with ErrEventNotFound. On success the student's cached summary is
// marked stale.
func ApplyCorrections(ctx context.Context, database *sql.DB, studentID int64, day time.Time, loc *time.Location, edits map[int64]bool) error {
	if len(edits) == 0 {
		return nil
	}

	ok, err := studentExists(ctx, database, studentID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrUnknownStudent
	}

	tx, err := database.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	start, end := dayBounds(day, loc)
	rows, err := tx.QueryContext(ctx, `
SELECT id FROM events
WHERE student_id = $1 AND first_entered >= $2 AND first_entered < $3
FOR UPDATE`, studentID, start, end)
	if err != nil {
		return err
	}
	window := make(map[int64]struct{})
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			_ = rows.Close()
			return err
		}
		window[id] = struct{}{}
	}
	if err := rows.Close(); err != nil {
		return err
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for eventID := range edits {
		if _, ok := window[eventID]; !ok {
			return fmt.Errorf("event %d: %w", eventID, ErrEventNotFound)
		}
	}

	change, err := tx.PrepareContext(ctx,
		`UPDATE events SET satisfactory = $1 WHERE id = $2`)
	if err != nil {
		return err
	}
	defer func() { _ = change.Close() }()

	for eventID, satisfactory := range edits {
		if _, err := change.ExecContext(ctx, satisfactory, eventID); err != nil {
			return fmt.Errorf("correct event %d: %w", eventID, err)
		}
	}

	if err := markSummaryStale(ctx, tx, studentID); err != nil {
		return err
	}

	return tx.Commit()
}
