package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const waiterCallColumns = `id, table_id, table_name, status, created_at, resolved_at`

func scanWaiterCall(row pgx.Row) (WaiterCall, error) {
	var c WaiterCall
	err := row.Scan(&c.ID, &c.TableID, &c.TableName, &c.Status, &c.CreatedAt, &c.ResolvedAt)
	return c, err
}

type CreateWaiterCallParams struct {
	TableID   string
	TableName string
}

// CreateWaiterCall appends a PENDING entry. No dedup: repeated calls from the
// same table all enqueue and each must be resolved individually.
func (q *Queries) CreateWaiterCall(ctx context.Context, arg CreateWaiterCallParams) (WaiterCall, error) {
	return scanWaiterCall(q.db.QueryRow(ctx, `
		INSERT INTO waiter_calls (table_id, table_name)
		VALUES ($1, $2)
		RETURNING `+waiterCallColumns,
		arg.TableID, arg.TableName))
}

// ResolveWaiterCall flips exactly one PENDING entry to RESOLVED. Resolving a
// call that is missing or already resolved returns pgx.ErrNoRows.
func (q *Queries) ResolveWaiterCall(ctx context.Context, id uuid.UUID) (WaiterCall, error) {
	return scanWaiterCall(q.db.QueryRow(ctx, `
		UPDATE waiter_calls SET status = 'RESOLVED', resolved_at = now()
		WHERE id = $1 AND status = 'PENDING'
		RETURNING `+waiterCallColumns,
		id))
}

func (q *Queries) ListPendingWaiterCalls(ctx context.Context) ([]WaiterCall, error) {
	return q.listWaiterCalls(ctx, `
		SELECT `+waiterCallColumns+` FROM waiter_calls
		WHERE status = 'PENDING' ORDER BY created_at`)
}

// ListWaiterCalls returns the full history, resolved entries included.
func (q *Queries) ListWaiterCalls(ctx context.Context) ([]WaiterCall, error) {
	return q.listWaiterCalls(ctx, `
		SELECT `+waiterCallColumns+` FROM waiter_calls ORDER BY created_at DESC`)
}

func (q *Queries) listWaiterCalls(ctx context.Context, sql string) ([]WaiterCall, error) {
	rows, err := q.db.Query(ctx, sql)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var calls []WaiterCall
	for rows.Next() {
		c, err := scanWaiterCall(rows)
		if err != nil {
			return nil, err
		}
		calls = append(calls, c)
	}
	return calls, rows.Err()
}
