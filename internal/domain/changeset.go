package domain

const (
	UserTypeUser    = "User"
	UserTypeSubUser = "SubUser"
)

// ChangeSet is the proposed delta carried by an approval request. Nil fields
// are left untouched when the set is merged onto its target.
type ChangeSet struct {
	SystemRole   *string `json:"system_role,omitempty" validate:"omitempty,min=1,max=60"`
	CustomRoleID *string `json:"custom_role_id,omitempty" validate:"omitempty,uuid"`
	Status       *string `json:"status,omitempty" validate:"omitempty,oneof=pending active inactive suspended"`
}

func (c ChangeSet) IsEmpty() bool {
	return c.SystemRole == nil && c.CustomRoleID == nil && c.Status == nil
}

func (c ChangeSet) ChangesRole() bool {
	return c.SystemRole != nil || c.CustomRoleID != nil
}

// AppliedChange holds the target's snapshots around a merged ChangeSet.
type AppliedChange struct {
	Before any
	After  any
}
