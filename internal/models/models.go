package models

import "time"

// Status names seeded on first run. Statuses are reference data: rows are
// never deleted once a student points at them.
const (
	StatusEnrolled = "enrolled"
	StatusDropped  = "dropped"
)

type Status struct {
	ID           int64     `db:"id"`
	Name         string    `db:"name"`
	FirstEntered time.Time `db:"first_entered"`
}

type Category struct {
	ID           int64     `db:"id"`
	Name         string    `db:"name"`
	FirstEntered time.Time `db:"first_entered"`
}

type Student struct {
	ID           int64     `db:"id"`
	RosterID     string    `db:"roster_id"`
	Name         string    `db:"name"`
	FirstEntered time.Time `db:"first_entered"`
	StatusID     int64     `db:"status_id"`
	LastUpdated  time.Time `db:"last_updated"`
	Username     string    `db:"username"`
}

// Event is a single participation record. Immutable after insert except for
// Satisfactory, which the redemption flow may flip.
type Event struct {
	ID           int64     `db:"id"`
	StudentID    int64     `db:"student_id"`
	CategoryID   int64     `db:"category_id"`
	CategoryName string    `db:"category"`
	FirstEntered time.Time `db:"first_entered"`
	Satisfactory bool      `db:"satisfactory"`
}

// SummaryRow is the cached point total for one student. Stale means the row
// predates the most recent event or correction for that student.
type SummaryRow struct {
	StudentID int64  `db:"student_id"`
	Name      string `db:"name"`
	Username  string `db:"username"`
	Points    int    `db:"points"`
	Stale     bool   `db:"stale"`
}

// RoundSummary holds per-round satisfactory counts for one enrolled student,
// in the shape the LMS export wants.
type RoundSummary struct {
	StudentID int64
	Username  string
	Rounds    []int
}

type Metadata struct {
	ID                 int64     `db:"id"`
	FirstCreated       time.Time `db:"first_created"`
	LastOpened         time.Time `db:"last_opened"`
	SummaryLastUpdated time.Time `db:"summary_last_updated"`
}

// RosterEntry is one line of an imported roster file.
type RosterEntry struct {
	RosterID string
	Name     string
	Username string
}
