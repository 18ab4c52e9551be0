package auth

import "github.com/enat-pos/api/internal/enum"

// Action is a single capability a role may hold. Handlers gate on actions,
// never on role names, so adding a role means editing one table here.
type Action string

const (
	ActionViewOrders         Action = "orders.view"
	ActionAdvanceOrder       Action = "orders.advance"  // forward-only, one step at a time
	ActionSetAnyOrderStatus  Action = "orders.set_any"  // any status including CANCELLED
	ActionEditOrderItems     Action = "orders.edit_items"
	ActionReassignTable      Action = "orders.reassign_table"
	ActionMarkOrderPaid      Action = "orders.mark_paid"
	ActionManageMenu         Action = "menu.manage"
	ActionToggleAvailability Action = "menu.toggle_availability"
	ActionManageCategories   Action = "categories.manage"
	ActionResolveWaiterCall  Action = "waiter_calls.resolve"
	ActionViewWaiterHistory  Action = "waiter_calls.history"
	ActionManageExpenses     Action = "expenses.manage"
	ActionManageUsers        Action = "users.manage"
	ActionManageSettings     Action = "settings.manage"
	ActionViewLoginLogs      Action = "login_logs.view"
	ActionPrintReceipts      Action = "receipts.print"
)

// capabilities is the flat role -> action grant table. Roles are deliberately
// not hierarchical; each dashboard holds exactly the actions it needs.
var capabilities = map[string][]Action{
	enum.UserRoleChef: {
		ActionViewOrders,
		ActionAdvanceOrder,
		ActionToggleAvailability,
		ActionResolveWaiterCall,
	},
	enum.UserRoleAdmin: {
		ActionViewOrders,
		ActionSetAnyOrderStatus,
		ActionEditOrderItems,
		ActionReassignTable,
		ActionMarkOrderPaid,
		ActionManageMenu,
		ActionToggleAvailability,
		ActionManageCategories,
		ActionResolveWaiterCall,
		ActionViewWaiterHistory,
		ActionPrintReceipts,
	},
	enum.UserRoleOwner: {
		ActionViewOrders,
		ActionViewWaiterHistory,
		ActionManageExpenses,
		ActionManageUsers,
		ActionPrintReceipts,
	},
	enum.UserRoleDeveloper: {
		ActionViewOrders,
		ActionManageSettings,
		ActionViewLoginLogs,
	},
}

// Can reports whether the role holds the action. Unknown roles hold nothing.
func Can(role string, action Action) bool {
	for _, a := range capabilities[role] {
		if a == action {
			return true
		}
	}
	return false
}
