//go:build testutil
// +build testutil

package db_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/nOkuda/participation-tracker/internal/db"
	"github.com/nOkuda/participation-tracker/internal/models"
)

// mustRoster imports the given students and returns the enrolled rows keyed
// by display name.
func mustRoster(t *testing.T, ctx context.Context, database *sql.DB, entries ...models.RosterEntry) map[string]models.Student {
	t.Helper()
	if err := db.UpsertRoster(ctx, database, entries); err != nil {
		t.Fatal(err)
	}
	students, err := db.ListEnrolled(ctx, database)
	if err != nil {
		t.Fatal(err)
	}
	out := make(map[string]models.Student, len(students))
	for _, s := range students {
		out[s.Name] = s
	}
	return out
}

func mustCategory(t *testing.T, ctx context.Context, database *sql.DB, name string) int64 {
	t.Helper()
	c, err := db.CategoryByName(ctx, database, name)
	if err != nil {
		t.Fatalf("category %q: %v", name, err)
	}
	return c.ID
}

func mustRecord(t *testing.T, ctx context.Context, database *sql.DB, studentID, categoryID int64, satisfactory bool) int64 {
	t.Helper()
	id, err := db.RecordEvent(ctx, database, studentID, categoryID, satisfactory)
	if err != nil {
		t.Fatal(err)
	}
	return id
}

func pointsFor(rows []models.SummaryRow, studentID int64) int {
	for _, r := range rows {
		if r.StudentID == studentID {
			return r.Points
		}
	}
	return -1
}
