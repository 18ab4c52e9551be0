package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const userColumns = `id, username, hashed_password, role, full_name, is_active, created_at`

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Username, &u.HashedPassword, &u.Role, &u.FullName, &u.IsActive, &u.CreatedAt)
	return u, err
}

// GetUserByUsername matches case-insensitively; usernames are unique under
// LOWER() among active users.
func (q *Queries) GetUserByUsername(ctx context.Context, username string) (User, error) {
	return scanUser(q.db.QueryRow(ctx, `
		SELECT `+userColumns+` FROM users
		WHERE LOWER(username) = LOWER($1) AND is_active`,
		username))
}

func (q *Queries) GetUserByID(ctx context.Context, id uuid.UUID) (User, error) {
	return scanUser(q.db.QueryRow(ctx, `
		SELECT `+userColumns+` FROM users WHERE id = $1 AND is_active`, id))
}

func (q *Queries) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := q.db.Query(ctx, `
		SELECT `+userColumns+` FROM users WHERE is_active ORDER BY username`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

type CreateUserParams struct {
	Username       string
	HashedPassword string
	Role           string
	FullName       string
}

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	return scanUser(q.db.QueryRow(ctx, `
		INSERT INTO users (username, hashed_password, role, full_name)
		VALUES ($1, $2, $3, $4)
		RETURNING `+userColumns,
		arg.Username, arg.HashedPassword, arg.Role, arg.FullName))
}

type UpdateUserParams struct {
	ID             uuid.UUID
	Username       string
	HashedPassword string
	Role           string
	FullName       string
}

func (q *Queries) UpdateUser(ctx context.Context, arg UpdateUserParams) (User, error) {
	return scanUser(q.db.QueryRow(ctx, `
		UPDATE users
		SET username = $2, hashed_password = $3, role = $4, full_name = $5
		WHERE id = $1 AND is_active
		RETURNING `+userColumns,
		arg.ID, arg.Username, arg.HashedPassword, arg.Role, arg.FullName))
}

func (q *Queries) SoftDeleteUser(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	var deleted uuid.UUID
	err := q.db.QueryRow(ctx, `
		UPDATE users SET is_active = false WHERE id = $1 AND is_active
		RETURNING id`, id).Scan(&deleted)
	return deleted, err
}

func (q *Queries) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE is_active`).Scan(&n)
	return n, err
}
