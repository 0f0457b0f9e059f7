package db

import (
	"context"
	"database/sql"
	"fmt"
)

// RecordEvent durably commits one participation event and marks the student's
// cached summary stale. Both references are validated inside the transaction,
// so a failure of any step leaves no partial state.
func RecordEvent(ctx context.Context, database *sql.DB, studentID, categoryID int64, satisfactory bool) (int64, error) {
	tx, err := database.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	ok, err := studentExists(ctx, tx, studentID)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, ErrUnknownStudent
	}

	var catOK bool
	if err := tx.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM categories WHERE id = $1)`, categoryID).Scan(&catOK); err != nil {
		return 0, err
	}
	if !catOK {
		return 0, ErrUnknownCategory
	}

	var eventID int64
	if err := tx.QueryRowContext(ctx, `
INSERT INTO events (student_id, category_id, satisfactory)
VALUES ($1, $2, $3)
RETURNING id`, studentID, categoryID, satisfactory).Scan(&eventID); err != nil {
		return 0, fmt.Errorf("insert event: %w", err)
	}

	if err := markSummaryStale(ctx, tx, studentID); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return eventID, nil
}

// markSummaryStale flags the student's cached total as out of date, creating
// the summary row if the aggregator has not seen this student yet.
func markSummaryStale(ctx context.Context, tx *sql.Tx, studentID int64) error {
	_, err := tx.ExecContext(ctx, `
INSERT INTO summary (student_id, points, stale)
VALUES ($1, 0, TRUE)
ON CONFLICT (student_id) DO UPDATE SET stale = TRUE`, studentID)
	if err != nil {
		return fmt.Errorf("mark summary stale: %w", err)
	}
	return nil
}
