package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/nOkuda/participation-tracker/internal/models"
)

// ListEnrolled returns every student whose status is "enrolled", ordered by id.
func ListEnrolled(ctx context.Context, database *sql.DB) ([]models.Student, error) {
	rows, err := database.QueryContext(ctx, `
SELECT id, roster_id, name, first_entered, status_id, last_updated, username
FROM students
WHERE status_id = (SELECT id FROM statuses WHERE name = $1)
ORDER BY id`, models.StatusEnrolled)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []models.Student
	for rows.Next() {
		var s models.Student
		if err := rows.Scan(&s.ID, &s.RosterID, &s.Name, &s.FirstEntered, &s.StatusID, &s.LastUpdated, &s.Username); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func GetStudentByID(ctx context.Context, database *sql.DB, id int64) (*models.Student, error) {
	var s models.Student
	err := database.QueryRowContext(ctx, `
SELECT id, roster_id, name, first_entered, status_id, last_updated, username
FROM students WHERE id = $1`, id,
	).Scan(&s.ID, &s.RosterID, &s.Name, &s.FirstEntered, &s.StatusID, &s.LastUpdated, &s.Username)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUnknownStudent
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func studentExists(ctx context.Context, q interface {
	QueryRowContext(context.Context, string, ...any) *sql.Row
}, id int64) (bool, error) {
	var ok bool
	err := q.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM students WHERE id = $1)`, id).Scan(&ok)
	return ok, err
}

// UpsertRoster reconciles the student table with an imported roster in one
// transaction: new roster ids are inserted as enrolled, changed rows are
// updated and re-enrolled, and students absent from the import are marked
// dropped. Nothing is ever deleted.
func UpsertRoster(ctx context.Context, database *sql.DB, entries []models.RosterEntry) error {
	tx, err := database.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var enrolledID, droppedID int64
	if err := tx.QueryRowContext(ctx,
		`SELECT id FROM statuses WHERE name = $1`, models.StatusEnrolled).Scan(&enrolledID); err != nil {
		return fmt.Errorf("status %q: %w", models.StatusEnrolled, err)
	}
	if err := tx.QueryRowContext(ctx,
		`SELECT id FROM statuses WHERE name = $1`, models.StatusDropped).Scan(&droppedID); err != nil {
		return fmt.Errorf("status %q: %w", models.StatusDropped, err)
	}

	absent := make(map[string]struct{})
	rows, err := tx.QueryContext(ctx, `SELECT roster_id FROM students`)
	if err != nil {
		return err
	}
	for rows.Next() {
		var rid string
		if err := rows.Scan(&rid); err != nil {
			_ = rows.Close()
			return err
		}
		absent[rid] = struct{}{}
	}
	if err := rows.Close(); err != nil {
		return err
	}
	if err := rows.Err(); err != nil {
		return err
	}

	upsert, err := tx.PrepareContext(ctx, `
INSERT INTO students AS s (roster_id, name, status_id, username)
VALUES ($1, $2, $3, $4)
ON CONFLICT (roster_id) DO UPDATE SET
	(name, status_id, last_updated, username) = ($2, $3, CURRENT_TIMESTAMP, $4)
	WHERE s.status_id != $3 OR s.name != $2 OR s.username != $4`)
	if err != nil {
		return err
	}
	defer func() { _ = upsert.Close() }()

	for _, e := range entries {
		delete(absent, e.RosterID)
		if _, err := upsert.ExecContext(ctx, e.RosterID, e.Name, enrolledID, e.Username); err != nil {
			return fmt.Errorf("upsert roster id %s: %w", e.RosterID, err)
		}
	}

	drop, err := tx.PrepareContext(ctx, `
UPDATE students SET (status_id, last_updated) = ($1, CURRENT_TIMESTAMP)
WHERE status_id != $1 AND roster_id = $2`)
	if err != nil {
		return err
	}
	defer func() { _ = drop.Close() }()

	for rid := range absent {
		if _, err := drop.ExecContext(ctx, droppedID, rid); err != nil {
			return fmt.Errorf("drop roster id %s: %w", rid, err)
		}
	}

	return tx.Commit()
}
