package domain

import "go-diligince/internal/permission"

// Caller is the authenticated identity a service needs to refine access once
// the target resource is loaded.
type Caller struct {
	UserID       string
	CompanyID    string
	SystemRole   string
	CustomRoleID string
}

func (c Caller) Check(module permission.Module, action permission.Action, level permission.Level) PermissionCheck {
	return PermissionCheck{
		SubjectID:    c.UserID,
		CompanyID:    c.CompanyID,
		SystemRole:   c.SystemRole,
		CustomRoleID: c.CustomRoleID,
		Module:       module,
		Action:       action,
		Level:        level,
	}
}
