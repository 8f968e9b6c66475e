// Package permission is the pure permission model: scoped grants of
// module x actions x level and the predicate that evaluates them.
package permission

import "slices"

type Module string

const (
	ModuleRequirements   Module = "requirements"
	ModuleRFQs           Module = "rfqs"
	ModuleQuotes         Module = "quotes"
	ModulePurchaseOrders Module = "purchase_orders"
	ModuleVendors        Module = "vendors"
	ModuleMessages       Module = "messages"
	ModuleNotifications  Module = "notifications"
	ModuleCompliance     Module = "compliance"
	ModuleRoles          Module = "roles"
	ModuleUsers          Module = "users"
	ModuleApprovals      Module = "approvals"
	ModuleReports        Module = "reports"
	ModuleSettings       Module = "settings"
	ModuleAudit          Module = "audit"
)

var modules = []Module{
	ModuleRequirements,
	ModuleRFQs,
	ModuleQuotes,
	ModulePurchaseOrders,
	ModuleVendors,
	ModuleMessages,
	ModuleNotifications,
	ModuleCompliance,
	ModuleRoles,
	ModuleUsers,
	ModuleApprovals,
	ModuleReports,
	ModuleSettings,
	ModuleAudit,
}

func Modules() []Module {
	return slices.Clone(modules)
}

func (m Module) Valid() bool {
	return slices.Contains(modules, m)
}

type Action string

const (
	ActionCreate  Action = "create"
	ActionRead    Action = "read"
	ActionUpdate  Action = "update"
	ActionDelete  Action = "delete"
	ActionApprove Action = "approve"
	ActionExport  Action = "export"
)

var actions = []Action{ActionCreate, ActionRead, ActionUpdate, ActionDelete, ActionApprove, ActionExport}

func (a Action) Valid() bool {
	return slices.Contains(actions, a)
}

// Level is the breadth of visibility a grant covers.
// Ordering: none < own < team < company < all.
type Level string

const (
	LevelNone    Level = "none"
	LevelOwn     Level = "own"
	LevelTeam    Level = "team"
	LevelCompany Level = "company"
	LevelAll     Level = "all"
)

var levelRank = map[Level]int{
	LevelNone:    0,
	LevelOwn:     1,
	LevelTeam:    2,
	LevelCompany: 3,
	LevelAll:     4,
}

func (l Level) Valid() bool {
	_, ok := levelRank[l]
	return ok
}

// Covers reports whether a grant at level l reaches a resource that requires
// level required. none never covers anything and is never a valid requirement.
func (l Level) Covers(required Level) bool {
	granted, ok := levelRank[l]
	if !ok || l == LevelNone {
		return false
	}
	need, ok := levelRank[required]
	if !ok || required == LevelNone {
		return false
	}
	return need <= granted
}
