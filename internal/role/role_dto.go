package role

import (
	"strings"

	"go-diligince/internal/permission"
)

type CreateCustomRoleRequest struct {
	Name        string            `json:"name" binding:"required,max=60"`
	DisplayName string            `json:"display_name" binding:"required,max=120"`
	Description string            `json:"description"`
	Permissions permission.Grants `json:"permissions" binding:"required,min=1,dive"`
}

// UpdateCustomRoleRequest carries only the fields the caller wants changed.
type UpdateCustomRoleRequest struct {
	Name        *string            `json:"name" binding:"omitempty,max=60"`
	DisplayName *string            `json:"display_name" binding:"omitempty,max=120"`
	Description *string            `json:"description"`
	Permissions *permission.Grants `json:"permissions" binding:"omitempty,min=1"`
}

// CustomRolePatch is the typed set of mutable fields. Nil means unchanged.
type CustomRolePatch struct {
	Name        *string
	DisplayName *string
	Description *string
	Permissions *permission.Grants
}

func (r UpdateCustomRoleRequest) Patch() CustomRolePatch {
	p := CustomRolePatch{
		DisplayName: r.DisplayName,
		Description: r.Description,
		Permissions: r.Permissions,
	}
	if r.Name != nil {
		n := strings.TrimSpace(*r.Name)
		p.Name = &n
	}
	return p
}

func (p CustomRolePatch) IsEmpty() bool {
	return p.Name == nil && p.DisplayName == nil && p.Description == nil && p.Permissions == nil
}

// Apply copies the set fields onto role and reports whether grants changed.
func (p CustomRolePatch) Apply(r *CustomRole) (permissionsChanged bool) {
	if p.Name != nil {
		r.Name = *p.Name
	}
	if p.DisplayName != nil {
		r.DisplayName = *p.DisplayName
	}
	if p.Description != nil {
		r.Description = *p.Description
	}
	if p.Permissions != nil {
		r.Permissions = *p.Permissions
		permissionsChanged = true
	}
	return permissionsChanged
}

type CustomRoleResponse struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	DisplayName string            `json:"display_name"`
	Description string            `json:"description,omitempty"`
	CompanyID   string            `json:"company_id"`
	CompanyType string            `json:"company_type"`
	Permissions permission.Grants `json:"permissions"`
	IsActive    bool              `json:"is_active"`
	CreatedBy   string            `json:"created_by"`
	UpdatedBy   *string           `json:"updated_by,omitempty"`
	Version     int64             `json:"version"`
	CreatedAt   string            `json:"created_at"`
	UpdatedAt   string            `json:"updated_at"`
}

type SystemRoleResponse struct {
	Name        string   `json:"name"`
	DisplayName string   `json:"display_name"`
	Permissions []string `json:"permissions"`
}
