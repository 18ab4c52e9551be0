package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/enat-pos/api/internal/auth"
	"github.com/enat-pos/api/internal/database"
	"github.com/enat-pos/api/internal/enum"
	"github.com/enat-pos/api/internal/pricing"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// Errors returned by the order service.
var (
	ErrEmptyItems           = errors.New("items are required")
	ErrInvalidQuantity      = errors.New("quantity must be > 0")
	ErrInvalidMenuItemID    = errors.New("invalid menu_item_id")
	ErrMenuItemNotFound     = errors.New("menu item not found")
	ErrInvalidPaymentMethod = errors.New("invalid payment_method")
	ErrInvalidPrice         = errors.New("invalid price")
	ErrTableRequired        = errors.New("table_id is required")
	ErrOrderNotFound        = errors.New("order not found")
	ErrOrderClosed          = errors.New("order is completed or cancelled and can no longer change")
	ErrInvalidStatus        = errors.New("invalid status")
	ErrTransitionNotAllowed = errors.New("status transition not allowed for this role")
)

// DB is the connection pool surface the services need: plain queries plus
// the ability to open a transaction. Satisfied by *pgxpool.Pool.
type DB interface {
	database.DBTX
	Begin(ctx context.Context) (pgx.Tx, error)
}

// OrderStore defines the DB methods the order service needs.
// Satisfied by *database.Queries (and its WithTx variant).
type OrderStore interface {
	GetMenuItem(ctx context.Context, id uuid.UUID) (database.MenuItem, error)
	CreateOrder(ctx context.Context, arg database.CreateOrderParams) (database.Order, error)
	CreateOrderItem(ctx context.Context, arg database.CreateOrderItemParams) (database.OrderItem, error)
	GetOrder(ctx context.Context, id uuid.UUID) (database.Order, error)
	ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]database.OrderItem, error)
	DeleteOrderItems(ctx context.Context, orderID uuid.UUID) error
	UpdateOrderTotals(ctx context.Context, arg database.UpdateOrderTotalsParams) (database.Order, error)
	UpdateOrderStatus(ctx context.Context, arg database.UpdateOrderStatusParams) (database.Order, error)
}

// NewOrderStore creates an OrderStore from a DBTX (pool or tx), letting the
// service run its multi-write operations inside one transaction.
type NewOrderStore func(db database.DBTX) OrderStore

// PlaceOrderRequest is the validated input for guest/phone checkout.
type PlaceOrderRequest struct {
	TableID       string
	TableName     string
	PaymentMethod string
	Items         []OrderItemRequest
}

// OrderItemRequest is a single cart line. Price is optional: when empty the
// current menu price is captured as the snapshot; when set (admin edits
// passing back an existing line) the frozen price is kept as-is.
type OrderItemRequest struct {
	MenuItemID string
	Quantity   int32
	Notes      string
	Price      string
}

// OrderWithItems is a full order with its line items.
type OrderWithItems struct {
	Order database.Order
	Items []database.OrderItem
}

// OrderService handles order lifecycle business logic.
type OrderService struct {
	pool     DB
	newStore NewOrderStore
}

// NewOrderService creates a new OrderService.
func NewOrderService(pool DB, newStore NewOrderStore) *OrderService {
	return &OrderService{pool: pool, newStore: newStore}
}

// preparedItem is a validated line with its price snapshot resolved.
type preparedItem struct {
	menuItemID uuid.UUID
	name       string
	price      decimal.Decimal
	quantity   int32
	notes      string
}

// Place validates, prices, and creates an order atomically. The order starts
// PENDING/UNPAID; totals come from the pricing engine, never the caller.
func (s *OrderService) Place(ctx context.Context, req PlaceOrderRequest) (*OrderWithItems, error) {
	if req.TableID == "" {
		return nil, ErrTableRequired
	}
	if req.PaymentMethod != enum.PaymentMethodOnline && req.PaymentMethod != enum.PaymentMethodCash {
		return nil, ErrInvalidPaymentMethod
	}
	if len(req.Items) == 0 {
		return nil, ErrEmptyItems
	}
	for i, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("items[%d]: %w", i, ErrInvalidQuantity)
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	prepared, err := s.prepareItems(ctx, store, req.Items)
	if err != nil {
		return nil, err
	}
	totals := computeTotals(prepared)

	tableName := req.TableName
	if tableName == "" {
		tableName = "Table " + req.TableID
	}

	order, err := store.CreateOrder(ctx, database.CreateOrderParams{
		TableID:       req.TableID,
		TableName:     tableName,
		Subtotal:      decimalToNumeric(totals.Subtotal),
		Tax:           decimalToNumeric(totals.Tax),
		ServiceFee:    decimalToNumeric(totals.ServiceFee),
		Total:         decimalToNumeric(totals.Total),
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	items, err := insertItems(ctx, store, order.ID, prepared)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return &OrderWithItems{Order: order, Items: items}, nil
}

// UpdateItems replaces the entire line-item sequence and recomputes totals in
// the same transaction, so no reader ever sees new items with stale totals.
// Lines with quantity below 1 are removed, never stored as zero or negative.
func (s *OrderService) UpdateItems(ctx context.Context, orderID uuid.UUID, items []OrderItemRequest) (*OrderWithItems, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	current, err := store.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	if isTerminal(current.Status) {
		return nil, ErrOrderClosed
	}

	// Decrementing a line to zero drops it; everything else passes through.
	kept := make([]OrderItemRequest, 0, len(items))
	for _, item := range items {
		if item.Quantity >= 1 {
			kept = append(kept, item)
		}
	}

	prepared, err := s.prepareItems(ctx, store, kept)
	if err != nil {
		return nil, err
	}
	totals := computeTotals(prepared)

	if err := store.DeleteOrderItems(ctx, orderID); err != nil {
		return nil, fmt.Errorf("delete order items: %w", err)
	}
	inserted, err := insertItems(ctx, store, orderID, prepared)
	if err != nil {
		return nil, err
	}

	order, err := store.UpdateOrderTotals(ctx, database.UpdateOrderTotalsParams{
		ID:         orderID,
		Subtotal:   decimalToNumeric(totals.Subtotal),
		Tax:        decimalToNumeric(totals.Tax),
		ServiceFee: decimalToNumeric(totals.ServiceFee),
		Total:      decimalToNumeric(totals.Total),
	})
	if err != nil {
		return nil, fmt.Errorf("update order totals: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return &OrderWithItems{Order: order, Items: inserted}, nil
}

// UpdateStatus applies a role-gated transition. Roles with the set-any
// capability may choose any status; advance-only roles move forward one step
// at a time. Setting the current status again is a no-op, not an error.
// The write itself is last-write-wins: concurrent staff edits overwrite each
// other with no conflict signal.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, newStatus, role string) (*database.Order, error) {
	if !isValidStatus(newStatus) {
		return nil, ErrInvalidStatus
	}

	store := s.newStore(s.pool)

	current, err := store.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	if current.Status == newStatus {
		return &current, nil
	}
	if isTerminal(current.Status) {
		return nil, ErrOrderClosed
	}

	switch {
	case auth.Can(role, auth.ActionSetAnyOrderStatus):
		// any transition allowed
	case auth.Can(role, auth.ActionAdvanceOrder):
		if chefNext[current.Status] != newStatus {
			return nil, ErrTransitionNotAllowed
		}
	default:
		return nil, ErrTransitionNotAllowed
	}

	updated, err := store.UpdateOrderStatus(ctx, database.UpdateOrderStatusParams{
		ID:     orderID,
		Status: newStatus,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("update order status: %w", err)
	}
	return &updated, nil
}

// chefNext is the forward-only, single-step path for kitchen staff.
var chefNext = map[string]string{
	enum.OrderStatusPending:   enum.OrderStatusPreparing,
	enum.OrderStatusPreparing: enum.OrderStatusReady,
}

func isValidStatus(s string) bool {
	switch s {
	case enum.OrderStatusPending, enum.OrderStatusPreparing, enum.OrderStatusReady,
		enum.OrderStatusCompleted, enum.OrderStatusCancelled:
		return true
	}
	return false
}

func isTerminal(s string) bool {
	return s == enum.OrderStatusCompleted || s == enum.OrderStatusCancelled
}

// prepareItems resolves each request line into a priced snapshot. Lines that
// carry a price keep it (frozen at original add time); lines without one
// capture the live menu price now.
func (s *OrderService) prepareItems(ctx context.Context, store OrderStore, items []OrderItemRequest) ([]preparedItem, error) {
	prepared := make([]preparedItem, 0, len(items))
	for i, item := range items {
		menuItemID, err := uuid.Parse(item.MenuItemID)
		if err != nil {
			return nil, fmt.Errorf("items[%d]: %w", i, ErrInvalidMenuItemID)
		}

		menuItem, err := store.GetMenuItem(ctx, menuItemID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, fmt.Errorf("items[%d]: %w", i, ErrMenuItemNotFound)
			}
			return nil, fmt.Errorf("items[%d]: get menu item: %w", i, err)
		}

		price := numericToDecimal(menuItem.Price)
		if item.Price != "" {
			price, err = decimal.NewFromString(item.Price)
			if err != nil || price.IsNegative() {
				return nil, fmt.Errorf("items[%d]: %w", i, ErrInvalidPrice)
			}
		}

		prepared = append(prepared, preparedItem{
			menuItemID: menuItemID,
			name:       menuItem.Name,
			price:      price,
			quantity:   item.Quantity,
			notes:      item.Notes,
		})
	}
	return prepared, nil
}

func insertItems(ctx context.Context, store OrderStore, orderID uuid.UUID, prepared []preparedItem) ([]database.OrderItem, error) {
	var items []database.OrderItem
	for pos, p := range prepared {
		notes := pgtype.Text{}
		if p.notes != "" {
			notes = pgtype.Text{String: p.notes, Valid: true}
		}
		item, err := store.CreateOrderItem(ctx, database.CreateOrderItemParams{
			OrderID:    orderID,
			MenuItemID: p.menuItemID,
			Name:       p.name,
			Price:      decimalToNumeric(p.price),
			Quantity:   p.quantity,
			Notes:      notes,
			Position:   int32(pos),
		})
		if err != nil {
			return nil, fmt.Errorf("create order item: %w", err)
		}
		items = append(items, item)
	}
	return items, nil
}

func computeTotals(prepared []preparedItem) pricing.Totals {
	lines := make([]pricing.LineItem, len(prepared))
	for i, p := range prepared {
		lines[i] = pricing.LineItem{Price: p.price, Quantity: p.quantity}
	}
	return pricing.ComputeTotals(lines)
}

// --- Helpers ---

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(d.StringFixed(2))
	return n
}
