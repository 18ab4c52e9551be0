package database

import "context"

// loginLogCap is the fixed ring size; the oldest entries are evicted once the
// 101st attempt lands.
const loginLogCap = 100

type CreateLoginLogParams struct {
	Username string
	Role     string
	Status   string
}

// CreateLoginLog appends an attempt and trims the log back to the cap in the
// same call, oldest first.
func (q *Queries) CreateLoginLog(ctx context.Context, arg CreateLoginLogParams) (LoginLog, error) {
	var l LoginLog
	err := q.db.QueryRow(ctx, `
		INSERT INTO login_logs (username, role, status)
		VALUES ($1, $2, $3)
		RETURNING id, username, role, status, created_at`,
		arg.Username, arg.Role, arg.Status).
		Scan(&l.ID, &l.Username, &l.Role, &l.Status, &l.CreatedAt)
	if err != nil {
		return LoginLog{}, err
	}

	_, err = q.db.Exec(ctx, `
		DELETE FROM login_logs
		WHERE id NOT IN (
			SELECT id FROM login_logs ORDER BY created_at DESC, id LIMIT $1
		)`, loginLogCap)
	if err != nil {
		return LoginLog{}, err
	}
	return l, nil
}

func (q *Queries) ListLoginLogs(ctx context.Context) ([]LoginLog, error) {
	rows, err := q.db.Query(ctx, `
		SELECT id, username, role, status, created_at FROM login_logs
		ORDER BY created_at DESC LIMIT $1`, loginLogCap)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []LoginLog
	for rows.Next() {
		var l LoginLog
		if err := rows.Scan(&l.ID, &l.Username, &l.Role, &l.Status, &l.CreatedAt); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

func (q *Queries) CountLoginLogs(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRow(ctx, `SELECT COUNT(*) FROM login_logs`).Scan(&n)
	return n, err
}
