package database

import (
	"context"

	"github.com/google/uuid"
)

func (q *Queries) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := q.db.Query(ctx, `SELECT id, name, created_at FROM categories ORDER BY created_at, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cats []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt); err != nil {
			return nil, err
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

// CreateCategory inserts a category label. Uniqueness is case-insensitive;
// inserting an existing label is a no-op and returns pgx.ErrNoRows.
func (q *Queries) CreateCategory(ctx context.Context, name string) (Category, error) {
	var c Category
	err := q.db.QueryRow(ctx, `
		INSERT INTO categories (name) VALUES ($1)
		ON CONFLICT ((LOWER(name))) DO NOTHING
		RETURNING id, name, created_at`,
		name).Scan(&c.ID, &c.Name, &c.CreatedAt)
	return c, err
}

// DeleteCategoryByName removes only the label. Member menu items keep their
// now-orphaned category string; this is a user-facing tradeoff, not a bug.
func (q *Queries) DeleteCategoryByName(ctx context.Context, name string) (uuid.UUID, error) {
	var id uuid.UUID
	err := q.db.QueryRow(ctx, `DELETE FROM categories WHERE name = $1 RETURNING id`, name).Scan(&id)
	return id, err
}

type RenameCategoryParams struct {
	OldName string
	NewName string
}

func (q *Queries) RenameCategory(ctx context.Context, arg RenameCategoryParams) (Category, error) {
	var c Category
	err := q.db.QueryRow(ctx, `
		UPDATE categories SET name = $2 WHERE name = $1
		RETURNING id, name, created_at`,
		arg.OldName, arg.NewName).Scan(&c.ID, &c.Name, &c.CreatedAt)
	return c, err
}

func (q *Queries) GetCategoryByName(ctx context.Context, name string) (Category, error) {
	var c Category
	err := q.db.QueryRow(ctx, `
		SELECT id, name, created_at FROM categories WHERE LOWER(name) = LOWER($1)`,
		name).Scan(&c.ID, &c.Name, &c.CreatedAt)
	return c, err
}
