package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/nOkuda/participation-tracker/internal/models"
)

// Seed inserts the reference data a fresh database needs: the status set, the
// default category set, and the metadata singleton. Re-running is a no-op.
func Seed(ctx context.Context, database *sql.DB) error {
	for _, name := range []string{models.StatusEnrolled, models.StatusDropped} {
		if _, err := database.ExecContext(ctx,
			`INSERT INTO statuses (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`, name); err != nil {
			return fmt.Errorf("seed status %q: %w", name, err)
		}
	}

	categories := []string{"comment", "error", "homework", "practice", "question", "review"}
	for _, name := range categories {
		if _, err := database.ExecContext(ctx,
			`INSERT INTO categories (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`, name); err != nil {
			return fmt.Errorf("seed category %q: %w", name, err)
		}
	}

	if err := EnsureMetadata(ctx, database); err != nil {
		return fmt.Errorf("seed metadata: %w", err)
	}
	return nil
}
