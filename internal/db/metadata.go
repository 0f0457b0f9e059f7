package db

import (
	"context"
	"database/sql"

	"github.com/nOkuda/participation-tracker/internal/models"
)

// EnsureMetadata creates the singleton bookkeeping row if it is missing.
func EnsureMetadata(ctx context.Context, database *sql.DB) error {
	_, err := database.ExecContext(ctx, `
INSERT INTO metadata (id)
SELECT 1
WHERE NOT EXISTS (SELECT 1 FROM metadata)
ON CONFLICT DO NOTHING`)
	return err
}

// TouchOpened records that a session opened the database.
func TouchOpened(ctx context.Context, database *sql.DB) error {
	_, err := database.ExecContext(ctx,
		`UPDATE metadata SET last_opened = CURRENT_TIMESTAMP WHERE id = 1`)
	return err
}

func GetMetadata(ctx context.Context, database *sql.DB) (*models.Metadata, error) {
	var m models.Metadata
	err := database.QueryRowContext(ctx,
		`SELECT id, first_created, last_opened, summary_last_updated FROM metadata WHERE id = 1`,
	).Scan(&m.ID, &m.FirstCreated, &m.LastOpened, &m.SummaryLastUpdated)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
