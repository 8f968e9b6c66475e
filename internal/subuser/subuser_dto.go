package subuser

import (
	"strings"

	"go-diligince/internal/domain"

	"github.com/google/uuid"
)

type CreateSubUserRequest struct {
	Email        string  `json:"email" binding:"required,email"`
	FullName     string  `json:"full_name" binding:"required,max=255"`
	CustomRoleID *string `json:"custom_role_id" binding:"omitempty,uuid,excluded_with=SystemRole"`
	SystemRole   *string `json:"system_role" binding:"required_without=CustomRoleID"`
	ReportingTo  *string `json:"reporting_to" binding:"omitempty,uuid"`
}

type AcceptInvitationRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=active inactive suspended"`
}

type BulkUpdateStatusRequest struct {
	IDs    []string `json:"ids" binding:"required,min=1,max=100,dive,uuid"`
	Status string   `json:"status" binding:"required,oneof=active inactive suspended"`
}

type UpdateSubUserRequest struct {
	FullName     *string `json:"full_name" binding:"omitempty,max=255"`
	CustomRoleID *string `json:"custom_role_id" binding:"omitempty,uuid,excluded_with=SystemRole"`
	SystemRole   *string `json:"system_role" binding:"omitempty,max=60"`
	ReportingTo  *string `json:"reporting_to" binding:"omitempty,uuid"`
}

// SubUserPatch is the typed set of admin-editable fields. Nil means unchanged.
// Setting one role field clears the other.
type SubUserPatch struct {
	FullName     *string
	CustomRoleID *string
	SystemRole   *string
	ReportingTo  *string
}

func (r UpdateSubUserRequest) Patch() SubUserPatch {
	p := SubUserPatch{
		CustomRoleID: r.CustomRoleID,
		SystemRole:   r.SystemRole,
		ReportingTo:  r.ReportingTo,
	}
	if r.FullName != nil {
		n := strings.TrimSpace(*r.FullName)
		p.FullName = &n
	}
	return p
}

func (p SubUserPatch) IsEmpty() bool {
	return p.FullName == nil && p.CustomRoleID == nil && p.SystemRole == nil && p.ReportingTo == nil
}

func (p SubUserPatch) changesRole() bool {
	return p.CustomRoleID != nil || p.SystemRole != nil
}

func patchFromChangeSet(cs domain.ChangeSet) SubUserPatch {
	return SubUserPatch{CustomRoleID: cs.CustomRoleID, SystemRole: cs.SystemRole}
}

// apply copies the set fields onto u. Role ids are validated by the caller.
func (p SubUserPatch) apply(u *SubUser) {
	if p.FullName != nil {
		u.FullName = *p.FullName
	}
	if p.CustomRoleID != nil {
		id := uuid.MustParse(*p.CustomRoleID)
		u.CustomRoleID = &id
		u.SystemRole = nil
	}
	if p.SystemRole != nil {
		name := *p.SystemRole
		u.SystemRole = &name
		u.CustomRoleID = nil
	}
	if p.ReportingTo != nil {
		if *p.ReportingTo == "" {
			u.ReportingTo = nil
		} else {
			id := uuid.MustParse(*p.ReportingTo)
			u.ReportingTo = &id
		}
	}
}

type SubUserResponse struct {
	ID               string  `json:"id"`
	ParentUserID     string  `json:"parent_user_id"`
	CompanyID        string  `json:"company_id"`
	Email            string  `json:"email"`
	FullName         string  `json:"full_name"`
	CustomRoleID     *string `json:"custom_role_id,omitempty"`
	SystemRole       *string `json:"system_role,omitempty"`
	Status           string  `json:"status"`
	InvitationExpiry *string `json:"invitation_expiry,omitempty"`
	ReportingTo      *string `json:"reporting_to,omitempty"`
	Version          int64   `json:"version"`
	CreatedAt        string  `json:"created_at"`
	UpdatedAt        string  `json:"updated_at"`
}

// CreateSubUserResponse carries the invitation token once, at creation.
type CreateSubUserResponse struct {
	SubUserResponse
	InvitationToken string `json:"invitation_token"`
}

type BulkStatusResult struct {
	Updated []string          `json:"updated"`
	Failed  map[string]string `json:"failed,omitempty"`
}
