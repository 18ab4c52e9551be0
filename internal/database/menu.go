package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const menuItemColumns = `id, name, description, price, category, image_url, is_available, tags, allergens, created_at, updated_at`

func scanMenuItem(row pgx.Row) (MenuItem, error) {
	var m MenuItem
	err := row.Scan(&m.ID, &m.Name, &m.Description, &m.Price, &m.Category, &m.ImageUrl,
		&m.IsAvailable, &m.Tags, &m.Allergens, &m.CreatedAt, &m.UpdatedAt)
	return m, err
}

func (q *Queries) ListMenuItems(ctx context.Context) ([]MenuItem, error) {
	rows, err := q.db.Query(ctx, `SELECT `+menuItemColumns+` FROM menu_items ORDER BY category, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []MenuItem
	for rows.Next() {
		m, err := scanMenuItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

func (q *Queries) GetMenuItem(ctx context.Context, id uuid.UUID) (MenuItem, error) {
	return scanMenuItem(q.db.QueryRow(ctx,
		`SELECT `+menuItemColumns+` FROM menu_items WHERE id = $1`, id))
}

func (q *Queries) CountMenuItems(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRow(ctx, `SELECT COUNT(*) FROM menu_items`).Scan(&n)
	return n, err
}

type CreateMenuItemParams struct {
	Name        string
	Description string
	Price       pgtype.Numeric
	Category    string
	ImageUrl    string
	IsAvailable bool
	Tags        []string
	Allergens   []string
}

func (q *Queries) CreateMenuItem(ctx context.Context, arg CreateMenuItemParams) (MenuItem, error) {
	return scanMenuItem(q.db.QueryRow(ctx, `
		INSERT INTO menu_items (name, description, price, category, image_url, is_available, tags, allergens)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+menuItemColumns,
		arg.Name, arg.Description, arg.Price, arg.Category, arg.ImageUrl,
		arg.IsAvailable, arg.Tags, arg.Allergens))
}

type UpdateMenuItemParams struct {
	ID          uuid.UUID
	Name        string
	Description string
	Price       pgtype.Numeric
	Category    string
	ImageUrl    string
	IsAvailable bool
	Tags        []string
	Allergens   []string
}

// UpdateMenuItem is a full-record replace: the last writer wins, no merging.
func (q *Queries) UpdateMenuItem(ctx context.Context, arg UpdateMenuItemParams) (MenuItem, error) {
	return scanMenuItem(q.db.QueryRow(ctx, `
		UPDATE menu_items
		SET name = $2, description = $3, price = $4, category = $5, image_url = $6,
		    is_available = $7, tags = $8, allergens = $9, updated_at = now()
		WHERE id = $1
		RETURNING `+menuItemColumns,
		arg.ID, arg.Name, arg.Description, arg.Price, arg.Category, arg.ImageUrl,
		arg.IsAvailable, arg.Tags, arg.Allergens))
}

type SetMenuItemAvailabilityParams struct {
	ID          uuid.UUID
	IsAvailable bool
}

func (q *Queries) SetMenuItemAvailability(ctx context.Context, arg SetMenuItemAvailabilityParams) (MenuItem, error) {
	return scanMenuItem(q.db.QueryRow(ctx, `
		UPDATE menu_items SET is_available = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+menuItemColumns,
		arg.ID, arg.IsAvailable))
}

func (q *Queries) DeleteMenuItem(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	var deleted uuid.UUID
	err := q.db.QueryRow(ctx, `DELETE FROM menu_items WHERE id = $1 RETURNING id`, id).Scan(&deleted)
	return deleted, err
}

type RelabelMenuItemsCategoryParams struct {
	OldCategory string
	NewCategory string
}

// RelabelMenuItemsCategory rewrites every item referencing the old category
// label. Callers must run it in the same transaction as the category rename.
func (q *Queries) RelabelMenuItemsCategory(ctx context.Context, arg RelabelMenuItemsCategoryParams) (int64, error) {
	tag, err := q.db.Exec(ctx, `
		UPDATE menu_items SET category = $2, updated_at = now()
		WHERE category = $1`,
		arg.OldCategory, arg.NewCategory)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
