//go:build testutil
// +build testutil

package db_test

import (
	"context"
	"testing"

	"github.com/nOkuda/participation-tracker/internal/db"
	"github.com/nOkuda/participation-tracker/internal/models"
	"github.com/nOkuda/participation-tracker/internal/testutil/testdb"
)

func TestUpsertRoster_InsertUpdateDrop(t *testing.T) {
	ctx := context.Background()
	h, err := testdb.Start(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	students := mustRoster(t, ctx, h.DB,
		models.RosterEntry{RosterID: "100000001", Name: "Alice Jones", Username: "ajones"},
		models.RosterEntry{RosterID: "100000002", Name: "Bob Smith", Username: "bsmith"},
	)
	if len(students) != 2 {
		t.Fatalf("want 2 enrolled, got %d", len(students))
	}
	aliceID := students["Alice Jones"].ID

	// second import: Alice renamed, Bob absent, Carol new
	students = mustRoster(t, ctx, h.DB,
		models.RosterEntry{RosterID: "100000001", Name: "Alice Jones-Lee", Username: "ajones"},
		models.RosterEntry{RosterID: "100000003", Name: "Carol Park", Username: "cpark"},
	)

	if len(students) != 2 {
		t.Fatalf("want 2 enrolled after re-import, got %v", students)
	}
	if _, ok := students["Bob Smith"]; ok {
		t.Fatal("Bob should have been marked dropped, not enrolled")
	}
	renamed, ok := students["Alice Jones-Lee"]
	if !ok {
		t.Fatalf("Alice's rename did not stick: %v", students)
	}
	if renamed.ID != aliceID {
		t.Fatalf("rename must keep the same student row, want id %d got %d", aliceID, renamed.ID)
	}

	// Bob still exists, just dropped; roster import never deletes
	var total int
	if err := h.DB.QueryRowContext(ctx, `SELECT count(*) FROM students`).Scan(&total); err != nil {
		t.Fatal(err)
	}
	if total != 3 {
		t.Fatalf("want 3 student rows, got %d", total)
	}
}

func TestUpsertRoster_ReenrollsDroppedStudent(t *testing.T) {
	ctx := context.Background()
	h, err := testdb.Start(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	mustRoster(t, ctx, h.DB,
		models.RosterEntry{RosterID: "100000001", Name: "Alice Jones", Username: "ajones"},
		models.RosterEntry{RosterID: "100000002", Name: "Bob Smith", Username: "bsmith"},
	)
	// Bob absent → dropped
	mustRoster(t, ctx, h.DB,
		models.RosterEntry{RosterID: "100000001", Name: "Alice Jones", Username: "ajones"},
	)
	// Bob back → enrolled again
	students := mustRoster(t, ctx, h.DB,
		models.RosterEntry{RosterID: "100000001", Name: "Alice Jones", Username: "ajones"},
		models.RosterEntry{RosterID: "100000002", Name: "Bob Smith", Username: "bsmith"},
	)
	if _, ok := students["Bob Smith"]; !ok {
		t.Fatalf("Bob should be enrolled again, got %v", students)
	}
}

func TestUpsertRoster_IdempotentImport(t *testing.T) {
	ctx := context.Background()
	h, err := testdb.Start(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	entries := []models.RosterEntry{
		{RosterID: "100000001", Name: "Alice Jones", Username: "ajones"},
	}
	first := mustRoster(t, ctx, h.DB, entries...)
	second := mustRoster(t, ctx, h.DB, entries...)

	if first["Alice Jones"].ID != second["Alice Jones"].ID {
		t.Fatal("re-importing the same roster must not duplicate students")
	}
}

func TestGetStudentByID_Unknown(t *testing.T) {
	ctx := context.Background()
	h, err := testdb.Start(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	if _, err := db.GetStudentByID(ctx, h.DB, 9999); err != db.ErrUnknownStudent {
		t.Fatalf("want ErrUnknownStudent, got %v", err)
	}
}
