package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/nOkuda/participation-tracker/internal/models"
)

func ListCategories(ctx context.Context, database *sql.DB) ([]models.Category, error) {
	rows, err := database.QueryContext(ctx,
		`SELECT id, name, first_entered FROM categories ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.FirstEntered); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// CategoryByName resolves a category by its exact name.
func CategoryByName(ctx context.Context, database *sql.DB, name string) (*models.Category, error) {
	var c models.Category
	err := database.QueryRowContext(ctx,
		`SELECT id, name, first_entered FROM categories WHERE name = $1`, name,
	).Scan(&c.ID, &c.Name, &c.FirstEntered)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUnknownCategory
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// CreateCategory appends a new category. Categories are never removed once
// history references them, so there is no delete counterpart.
func CreateCategory(ctx context.Context, database *sql.DB, name string) (int64, error) {
	var id int64
	err := database.QueryRowContext(ctx,
		`INSERT INTO categories (name) VALUES ($1) RETURNING id`, name,
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}
