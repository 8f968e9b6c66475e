package subuser

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusPending   = "pending"
	StatusActive    = "active"
	StatusInactive  = "inactive"
	StatusSuspended = "suspended"
)

type SubUser struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ParentUserID     uuid.UUID  `gorm:"type:uuid;not null"`
	CompanyID        uuid.UUID  `gorm:"type:uuid;not null;index"`
	Email            string     `gorm:"type:varchar(255);not null;uniqueIndex:uq_sub_users_email"`
	FullName         string     `gorm:"type:varchar(255);not null"`
	CustomRoleID     *uuid.UUID `gorm:"type:uuid;index"`
	SystemRole       *string    `gorm:"type:varchar(60)"`
	Status           string     `gorm:"type:varchar(20);not null;default:'pending'"`
	InvitationToken  *string    `gorm:"type:varchar(64);uniqueIndex"`
	InvitationExpiry *time.Time
	ReportingTo      *uuid.UUID `gorm:"type:uuid"`
	PasswordHash     string     `gorm:"type:varchar(255)"`
	Version          int64      `gorm:"not null;default:1"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (SubUser) TableName() string {
	return "sub_users"
}

// RoleRef renders the assigned role the way role history stores it.
func (u SubUser) RoleRef() string {
	if u.CustomRoleID != nil {
		return "custom:" + u.CustomRoleID.String()
	}
	if u.SystemRole != nil {
		return "system:" + *u.SystemRole
	}
	return ""
}

var statusTransitions = map[string][]string{
	StatusPending:   {StatusActive, StatusInactive},
	StatusActive:    {StatusInactive, StatusSuspended},
	StatusInactive:  {StatusActive},
	StatusSuspended: {StatusActive, StatusInactive},
}

func isAllowedStatusTransition(from, to string) bool {
	for _, next := range statusTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
