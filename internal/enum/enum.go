package enum

// ── State machines (CHECK constrained in DB) ──

const (
	OrderStatusPending   = "PENDING"
	OrderStatusPreparing = "PREPARING"
	OrderStatusReady     = "READY"
	OrderStatusCompleted = "COMPLETED"
	OrderStatusCancelled = "CANCELLED"
)

const (
	PaymentStatusUnpaid = "UNPAID"
	PaymentStatusPaid   = "PAID"
)

const (
	WaiterCallStatusPending  = "PENDING"
	WaiterCallStatusResolved = "RESOLVED"
)

const (
	LoginStatusSuccess = "SUCCESS"
	LoginStatusFailed  = "FAILED"
)

// ── Roles and payment (CHECK constrained in DB) ──

const (
	UserRoleGuest     = "GUEST"
	UserRoleChef      = "CHEF"
	UserRoleAdmin     = "ADMIN"
	UserRoleOwner     = "OWNER"
	UserRoleDeveloper = "DEVELOPER"
)

const (
	PaymentMethodOnline = "ONLINE"
	PaymentMethodCash   = "CASH"
)

// ── Configurable labels (no DB constraint) ──

const (
	ThemeSavanna  = "SAVANNA"
	ThemeMidnight = "MIDNIGHT"
	ThemeGarden   = "GARDEN"
)

const (
	TableModeWheel = "WHEEL"
	TableModeGrid  = "GRID"
	TableModeList  = "LIST"
)

// TablePhone is the sentinel table id for phone-in orders. It never appears in
// the 1..totalTables range derived from settings.
const TablePhone = "PHONE"
