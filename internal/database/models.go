package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type MenuItem struct {
	ID          uuid.UUID
	Name        string
	Description string
	Price       pgtype.Numeric
	Category    string
	ImageUrl    string
	IsAvailable bool
	Tags        []string
	Allergens   []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Category struct {
	ID        uuid.UUID
	Name      string
	CreatedAt time.Time
}

type Order struct {
	ID            uuid.UUID
	TableID       string
	TableName     string
	Subtotal      pgtype.Numeric
	Tax           pgtype.Numeric
	ServiceFee    pgtype.Numeric
	Total         pgtype.Numeric
	Status        string
	PaymentStatus string
	PaymentMethod string
	CreatedAt     time.Time
	ReadyAt       pgtype.Timestamptz
	CompletedAt   pgtype.Timestamptz
	UpdatedAt     time.Time
}

// OrderItem is a menu-item snapshot attached to an order. Name and Price are
// frozen at add time; later menu edits never reach placed orders.
type OrderItem struct {
	ID         uuid.UUID
	OrderID    uuid.UUID
	MenuItemID uuid.UUID
	Name       string
	Price      pgtype.Numeric
	Quantity   int32
	Notes      pgtype.Text
	Position   int32
}

type WaiterCall struct {
	ID         uuid.UUID
	TableID    string
	TableName  string
	Status     string
	CreatedAt  time.Time
	ResolvedAt pgtype.Timestamptz
}

type Expense struct {
	ID           uuid.UUID
	Reason       string
	Amount       pgtype.Numeric
	ReceiptImage pgtype.Text
	SubmittedBy  string
	CreatedAt    time.Time
}

type User struct {
	ID             uuid.UUID
	Username       string
	HashedPassword string
	Role           string
	FullName       string
	IsActive       bool
	CreatedAt      time.Time
}

// Settings is the raw single-row settings record. Columns are nullable on
// purpose: the schema has grown over the system's life, and defaulting happens
// at the read boundary (GetSettings), not in storage.
type Settings struct {
	IsMaintenanceMode  pgtype.Bool
	MaintenanceMessage pgtype.Text
	RestaurantName     pgtype.Text
	RestaurantLocation pgtype.Text
	RestaurantLogo     pgtype.Text
	TotalTables        pgtype.Int4
	Theme              pgtype.Text
	TableSelectionMode pgtype.Text
	ReceiptPrinterName pgtype.Text
	UpdatedAt          time.Time
}

type LoginLog struct {
	ID        uuid.UUID
	Username  string
	Role      string
	Status    string
	CreatedAt time.Time
}
