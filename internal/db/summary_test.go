//go:build testutil
// +build testutil

package db_test

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/nOkuda/participation-tracker/internal/db"
	"github.com/nOkuda/participation-tracker/internal/models"
	"github.com/nOkuda/participation-tracker/internal/testutil/testdb"
)

func TestRefreshSummary_Idempotent(t *testing.T) {
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
	question := mustCategory(t, ctx, h.DB, "question")
	mustRecord(t, ctx, h.DB, students["Alice Jones"].ID, question, true)
	mustRecord(t, ctx, h.DB, students["Alice Jones"].ID, question, true)
	mustRecord(t, ctx, h.DB, students["Bob Smith"].ID, question, false)

	if err := db.RefreshSummary(ctx, h.DB, nil); err != nil {
		t.Fatal(err)
	}
	first, err := db.GetSummary(ctx, h.DB)
	if err != nil {
		t.Fatal(err)
	}

	if err := db.RefreshSummary(ctx, h.DB, nil); err != nil {
		t.Fatal(err)
	}
	second, err := db.GetSummary(ctx, h.DB)
	if err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("refresh is not idempotent:\nfirst  %+v\nsecond %+v", first, second)
	}
	if pointsFor(first, students["Alice Jones"].ID) != 2 {
		t.Fatalf("Alice should have 2 points, got %+v", first)
	}
}

func TestRefreshSummary_WeightedPolicy(t *testing.T) {
	ctx := context.Background()
	h, err := testdb.Start(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	students := mustRoster(t, ctx, h.DB,
		models.RosterEntry{RosterID: "100000001", Name: "Alice Jones", Username: "ajones"},
	)
	alice := students["Alice Jones"]
	mustRecord(t, ctx, h.DB, alice.ID, mustCategory(t, ctx, h.DB, "homework"), true)
	mustRecord(t, ctx, h.DB, alice.ID, mustCategory(t, ctx, h.DB, "question"), true)
	mustRecord(t, ctx, h.DB, alice.ID, mustCategory(t, ctx, h.DB, "question"), false)

	doubleHomework := func(category string, satisfactory bool) int {
		if !satisfactory {
			return 0
		}
		if category == "homework" {
			return 2
		}
		return 1
	}
	if err := db.RefreshSummary(ctx, h.DB, doubleHomework); err != nil {
		t.Fatal(err)
	}
	rows, err := db.GetSummary(ctx, h.DB)
	if err != nil {
		t.Fatal(err)
	}
	if pointsFor(rows, alice.ID) != 3 {
		t.Fatalf("weighted policy should yield 3, got %+v", rows)
	}
}

func TestGetSummary_IncludesZeroPointStudents(t *testing.T) {
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
	if err := db.RefreshSummary(ctx, h.DB, nil); err != nil {
		t.Fatal(err)
	}

	rows, err := db.GetSummary(ctx, h.DB)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("snapshot must cover every known student, got %d rows", len(rows))
	}
	for _, r := range rows {
		if r.Points != 0 {
			t.Fatalf("expected zero points, got %+v", r)
		}
	}
}

func TestRefreshSummary_TouchesMetadata(t *testing.T) {
	ctx := context.Background()
	h, err := testdb.Start(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	before, err := db.GetMetadata(ctx, h.DB)
	if err != nil {
		t.Fatal(err)
	}
	time.Sleep(50 * time.Millisecond)
	if err := db.RefreshSummary(ctx, h.DB, nil); err != nil {
		t.Fatal(err)
	}
	after, err := db.GetMetadata(ctx, h.DB)
	if err != nil {
		t.Fatal(err)
	}
	if !after.SummaryLastUpdated.After(before.SummaryLastUpdated) {
		t.Fatalf("refresh must advance summary_last_updated: before=%v after=%v",
			before.SummaryLastUpdated, after.SummaryLastUpdated)
	}
}

func TestRoundSummaries_BucketsByCutoff(t *testing.T) {
	ctx := context.Background()
	h, err := testdb.Start(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	students := mustRoster(t, ctx, h.DB,
		models.RosterEntry{RosterID: "100000001", Name: "Alice Jones", Username: "ajones"},
	)
	alice := students["Alice Jones"]
	question := mustCategory(t, ctx, h.DB, "question")

	// one event last week, one today, one unsatisfactory today
	if _, err := h.DB.ExecContext(ctx, `
INSERT INTO events (student_id, category_id, first_entered, satisfactory)
VALUES ($1, $2, CURRENT_TIMESTAMP - interval '7 days', TRUE)`, alice.ID, question); err != nil {
		t.Fatal(err)
	}
	mustRecord(t, ctx, h.DB, alice.ID, question, true)
	mustRecord(t, ctx, h.DB, alice.ID, question, false)

	now := time.Now()
	cutoffs := []time.Time{now.AddDate(0, 0, -3), now.AddDate(0, 0, 3)}
	rounds, err := db.RoundSummaries(ctx, h.DB, cutoffs)
	if err != nil {
		t.Fatal(err)
	}
	if len(rounds) != 1 {
		t.Fatalf("want 1 student, got %d", len(rounds))
	}
	got := rounds[0]
	if got.Username != "ajones" || !reflect.DeepEqual(got.Rounds, []int{1, 1}) {
		t.Fatalf("want rounds [1 1] for ajones, got %+v", got)
	}
}
