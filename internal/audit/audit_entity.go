package audit

import "time"

const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"

	CategoryRoleManagement   = "role_management"
	CategoryUserManagement   = "user_management"
	CategoryPermissionChange = "permission_change"
	CategoryApproval         = "approval"

	OutcomeSuccess = "success"
	OutcomeFailure = "failure"

	TargetTypeUser    = "User"
	TargetTypeSubUser = "SubUser"
)

// Change is one top-level field difference between two snapshots.
type Change struct {
	From any `json:"from"`
	To   any `json:"to"`
}

type Details struct {
	Before  map[string]any    `json:"before,omitempty"`
	After   map[string]any    `json:"after,omitempty"`
	Changes map[string]Change `json:"changes,omitempty"`
}

// Entry is one append-only audit record.
type Entry struct {
	ID             string  `gorm:"type:char(26);primaryKey"`
	Action         string  `gorm:"type:varchar(80);not null;index:idx_audit_logs_company_action"`
	PerformedBy    string  `gorm:"type:uuid;not null"`
	TargetUser     *string `gorm:"type:uuid;index:idx_audit_logs_target_user"`
	TargetUserType string  `gorm:"type:varchar(10)"`
	CompanyID      string  `gorm:"type:uuid;not null;index:idx_audit_logs_company_action"`
	Details        Details `gorm:"type:jsonb;serializer:json"`
	Severity       string  `gorm:"type:varchar(10);not null;default:'medium'"`
	Category       string  `gorm:"type:varchar(30);not null"`
	Outcome        string  `gorm:"type:varchar(10);not null;default:'success'"`
	CreatedAt      time.Time
}

func (Entry) TableName() string {
	return "audit_logs"
}

// RoleAssignment is an immutable record of a role change on an account.
// Roles are stored as "custom:<id>" or "system:<name>".
type RoleAssignment struct {
	ID            string    `gorm:"type:char(26);primaryKey"`
	UserID        string    `gorm:"type:uuid;not null;index:idx_role_assignments_user"`
	UserType      string    `gorm:"type:varchar(10);not null"`
	PreviousRole  string    `gorm:"type:varchar(80)"`
	NewRole       string    `gorm:"type:varchar(80);not null"`
	AssignedBy    string    `gorm:"type:uuid;not null"`
	CompanyID     string    `gorm:"type:uuid;not null"`
	Reason        string    `gorm:"type:text"`
	EffectiveDate time.Time `gorm:"not null"`
	CreatedAt     time.Time
}

func (RoleAssignment) TableName() string {
	return "role_assignment_history"
}

func CustomRoleRef(id string) string {
	if id == "" {
		return ""
	}
	return "custom:" + id
}

func SystemRoleRef(name string) string {
	if name == "" {
		return ""
	}
	return "system:" + name
}
