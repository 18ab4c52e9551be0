package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const orderColumns = `id, table_id, table_name, subtotal, tax, service_fee, total, status, payment_status, payment_method, created_at, ready_at, completed_at, updated_at`

func scanOrder(row pgx.Row) (Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.TableID, &o.TableName, &o.Subtotal, &o.Tax, &o.ServiceFee,
		&o.Total, &o.Status, &o.PaymentStatus, &o.PaymentMethod, &o.CreatedAt,
		&o.ReadyAt, &o.CompletedAt, &o.UpdatedAt)
	return o, err
}

type CreateOrderParams struct {
	TableID       string
	TableName     string
	Subtotal      pgtype.Numeric
	Tax           pgtype.Numeric
	ServiceFee    pgtype.Numeric
	Total         pgtype.Numeric
	PaymentMethod string
}

func (q *Queries) CreateOrder(ctx context.Context, arg CreateOrderParams) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, `
		INSERT INTO orders (table_id, table_name, subtotal, tax, service_fee, total, payment_method)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+orderColumns,
		arg.TableID, arg.TableName, arg.Subtotal, arg.Tax, arg.ServiceFee, arg.Total, arg.PaymentMethod))
}

func (q *Queries) GetOrder(ctx context.Context, id uuid.UUID) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
}

type ListOrdersParams struct {
	Status pgtype.Text
	Limit  int32
	Offset int32
}

func (q *Queries) ListOrders(ctx context.Context, arg ListOrdersParams) ([]Order, error) {
	rows, err := q.db.Query(ctx, `
		SELECT `+orderColumns+` FROM orders
		WHERE ($1::text IS NULL OR status = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`,
		arg.Status, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

type UpdateOrderStatusParams struct {
	ID     uuid.UUID
	Status string
}

// UpdateOrderStatus writes the new status unconditionally (last write wins)
// and stamps ready_at/completed_at the first time those states are reached.
func (q *Queries) UpdateOrderStatus(ctx context.Context, arg UpdateOrderStatusParams) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, `
		UPDATE orders
		SET status = $2,
		    ready_at = CASE WHEN $2 = 'READY' AND ready_at IS NULL THEN now() ELSE ready_at END,
		    completed_at = CASE WHEN $2 = 'COMPLETED' AND completed_at IS NULL THEN now() ELSE completed_at END,
		    updated_at = now()
		WHERE id = $1
		RETURNING `+orderColumns,
		arg.ID, arg.Status))
}

type UpdateOrderTotalsParams struct {
	ID         uuid.UUID
	Subtotal   pgtype.Numeric
	Tax        pgtype.Numeric
	ServiceFee pgtype.Numeric
	Total      pgtype.Numeric
}

func (q *Queries) UpdateOrderTotals(ctx context.Context, arg UpdateOrderTotalsParams) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, `
		UPDATE orders
		SET subtotal = $2, tax = $3, service_fee = $4, total = $5, updated_at = now()
		WHERE id = $1
		RETURNING `+orderColumns,
		arg.ID, arg.Subtotal, arg.Tax, arg.ServiceFee, arg.Total))
}

type UpdateOrderTableParams struct {
	ID        uuid.UUID
	TableID   string
	TableName string
}

func (q *Queries) UpdateOrderTable(ctx context.Context, arg UpdateOrderTableParams) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, `
		UPDATE orders SET table_id = $2, table_name = $3, updated_at = now()
		WHERE id = $1
		RETURNING `+orderColumns,
		arg.ID, arg.TableID, arg.TableName))
}

// MarkOrderPaid is idempotent: marking an already-paid order paid succeeds
// and changes nothing.
func (q *Queries) MarkOrderPaid(ctx context.Context, id uuid.UUID) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, `
		UPDATE orders SET payment_status = 'PAID', updated_at = now()
		WHERE id = $1
		RETURNING `+orderColumns,
		id))
}

const orderItemColumns = `id, order_id, menu_item_id, name, price, quantity, notes, position`

type CreateOrderItemParams struct {
	OrderID    uuid.UUID
	MenuItemID uuid.UUID
	Name       string
	Price      pgtype.Numeric
	Quantity   int32
	Notes      pgtype.Text
	Position   int32
}

func (q *Queries) CreateOrderItem(ctx context.Context, arg CreateOrderItemParams) (OrderItem, error) {
	var it OrderItem
	err := q.db.QueryRow(ctx, `
		INSERT INTO order_items (order_id, menu_item_id, name, price, quantity, notes, position)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+orderItemColumns,
		arg.OrderID, arg.MenuItemID, arg.Name, arg.Price, arg.Quantity, arg.Notes, arg.Position).
		Scan(&it.ID, &it.OrderID, &it.MenuItemID, &it.Name, &it.Price, &it.Quantity, &it.Notes, &it.Position)
	return it, err
}

func (q *Queries) ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]OrderItem, error) {
	rows, err := q.db.Query(ctx, `
		SELECT `+orderItemColumns+` FROM order_items
		WHERE order_id = $1 ORDER BY position`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []OrderItem
	for rows.Next() {
		var it OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.MenuItemID, &it.Name, &it.Price,
			&it.Quantity, &it.Notes, &it.Position); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (q *Queries) DeleteOrderItems(ctx context.Context, orderID uuid.UUID) error {
	_, err := q.db.Exec(ctx, `DELETE FROM order_items WHERE order_id = $1`, orderID)
	return err
}
