package domain

import "go-diligince/internal/permission"

// PermissionCheck is what the request pipeline hands to the enforcer once the
// caller is authenticated. CustomRoleID wins over SystemRole when both are set.
type PermissionCheck struct {
	SubjectID    string
	CompanyID    string
	SystemRole   string
	CustomRoleID string
	Module       permission.Module
	Action       permission.Action
	Level        permission.Level
}

type CheckRequest struct {
	Module            string `json:"module" binding:"required"`
	Action            string `json:"action" binding:"required"`
	OwnerID           string `json:"owner_id"`
	OwnerReportsTo    string `json:"owner_reports_to"`
	ResourceCompanyID string `json:"resource_company_id"`
}

type CheckResponse struct {
	Allowed bool   `json:"allowed"`
	Level   string `json:"level"`
}
