package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const expenseColumns = `id, reason, amount, receipt_image, submitted_by, created_at`

type CreateExpenseParams struct {
	Reason       string
	Amount       pgtype.Numeric
	ReceiptImage pgtype.Text
	SubmittedBy  string
}

// CreateExpense appends to the ledger. Expenses are never updated or deleted.
func (q *Queries) CreateExpense(ctx context.Context, arg CreateExpenseParams) (Expense, error) {
	var e Expense
	err := q.db.QueryRow(ctx, `
		INSERT INTO expenses (reason, amount, receipt_image, submitted_by)
		VALUES ($1, $2, $3, $4)
		RETURNING `+expenseColumns,
		arg.Reason, arg.Amount, arg.ReceiptImage, arg.SubmittedBy).
		Scan(&e.ID, &e.Reason, &e.Amount, &e.ReceiptImage, &e.SubmittedBy, &e.CreatedAt)
	return e, err
}

func (q *Queries) ListExpenses(ctx context.Context) ([]Expense, error) {
	rows, err := q.db.Query(ctx, `SELECT `+expenseColumns+` FROM expenses ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var expenses []Expense
	for rows.Next() {
		var e Expense
		if err := rows.Scan(&e.ID, &e.Reason, &e.Amount, &e.ReceiptImage, &e.SubmittedBy, &e.CreatedAt); err != nil {
			return nil, err
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}
