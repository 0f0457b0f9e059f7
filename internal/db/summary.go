package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/nOkuda/participation-tracker/internal/models"
)

// PointsPolicy converts one event into points. The scoring formula is
// deliberately pluggable: the default counts satisfactory events, but a
// category-weighted policy drops in without schema changes.
type PointsPolicy func(category string, satisfactory bool) int

// CountSatisfactory is the default policy: one point per satisfactory event.
func CountSatisfactory(_ string, satisfactory bool) int {
	if satisfactory {
		return 1
	}
	return 0
}

// RefreshSummary recomputes every student's point total from the full event
// history in one transaction, overwriting the cached rows and touching the
// metadata refresh timestamp. Idempotent: with no intervening events, a second
// run rewrites identical totals.
func RefreshSummary(ctx context.Context, database *sql.DB, policy PointsPolicy) error {
	if policy == nil {
		policy = CountSatisfactory
	}

	tx, err := database.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	totals := make(map[int64]int)
	rows, err := tx.QueryContext(ctx, `
SELECT e.student_id, c.name, e.satisfactory, count(*)
FROM events e
JOIN categories c ON c.id = e.category_id
GROUP BY e.student_id, c.name, e.satisfactory`)
	if err != nil {
		return err
	}
	for rows.Next() {
		var (
			studentID    int64
			category     string
			satisfactory bool
			n            int
		)
		if err := rows.Scan(&studentID, &category, &satisfactory, &n); err != nil {
			_ = rows.Close()
			return err
		}
		totals[studentID] += n * policy(category, satisfactory)
	}
	if err := rows.Close(); err != nil {
		return err
	}
	if err := rows.Err(); err != nil {
		return err
	}

	var ids []int64
	idRows, err := tx.QueryContext(ctx, `SELECT id FROM students ORDER BY id`)
	if err != nil {
		return err
	}
	for idRows.Next() {
		var id int64
		if err := idRows.Scan(&id); err != nil {
			_ = idRows.Close()
			return err
		}
		ids = append(ids, id)
	}
	if err := idRows.Close(); err != nil {
		return err
	}
	if err := idRows.Err(); err != nil {
		return err
	}

	upsert, err := tx.PrepareContext(ctx, `
INSERT INTO summary (student_id, points, stale)
VALUES ($1, $2, FALSE)
ON CONFLICT (student_id) DO UPDATE SET points = $2, stale = FALSE`)
	if err != nil {
		return err
	}
	defer func() { _ = upsert.Close() }()

	for _, id := range ids {
		if _, err := upsert.ExecContext(ctx, id, totals[id]); err != nil {
			return fmt.Errorf("upsert summary for student %d: %w", id, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE metadata SET summary_last_updated = CURRENT_TIMESTAMP WHERE id = 1`); err != nil {
		return fmt.Errorf("touch summary timestamp: %w", err)
	}

	return tx.Commit()
}

// GetSummary returns the last computed snapshot ordered by student id,
// zero-point students included. It never forces a refresh; a caller that
// needs current totals runs RefreshSummary first.
func GetSummary(ctx context.Context, database *sql.DB) ([]models.SummaryRow, error) {
	rows, err := database.QueryContext(ctx, `
SELECT st.id, st.name, st.username, COALESCE(s.points, 0), COALESCE(s.stale, TRUE)
FROM students st
LEFT JOIN summary s ON s.student_id = st.id
ORDER BY st.id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []models.SummaryRow
	for rows.Next() {
		var r models.SummaryRow
		if err := rows.Scan(&r.StudentID, &r.Name, &r.Username, &r.Points, &r.Stale); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// RoundSummaries buckets each enrolled student's satisfactory events into
// grading rounds. cutoffs are the exclusive end boundaries of each round in
// ascending order; an event on or after the last cutoff counts toward no
// round, matching how the course site ignores late entries.
func RoundSummaries(ctx context.Context, database *sql.DB, cutoffs []time.Time) ([]models.RoundSummary, error) {
	students, err := ListEnrolled(ctx, database)
	if err != nil {
		return nil, err
	}

	byStudent := make(map[int64]*models.RoundSummary, len(students))
	out := make([]models.RoundSummary, 0, len(students))
	for _, s := range students {
		out = append(out, models.RoundSummary{
			StudentID: s.ID,
			Username:  s.Username,
			Rounds:    make([]int, len(cutoffs)),
		})
	}
	for i := range out {
		byStudent[out[i].StudentID] = &out[i]
	}

	rows, err := database.QueryContext(ctx, `
SELECT student_id, first_entered
FROM events
WHERE satisfactory
ORDER BY first_entered`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var (
			studentID int64
			entered   time.Time
		)
		if err := rows.Scan(&studentID, &entered); err != nil {
			return nil, err
		}
		rs, ok := byStudent[studentID]
		if !ok {
			continue // dropped student; history kept, export skips them
		}
		for i, cutoff := range cutoffs {
			if entered.Before(cutoff) {
				rs.Rounds[i]++
				break
			}
		}
	}
	return out, rows.Err()
}
