package userapproval

import (
	"time"

	"go-diligince/internal/approval"

	"github.com/google/uuid"
)

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
)

// DefaultSteps is the onboarding checklist used when none is supplied.
var DefaultSteps = []string{"Identity Verification", "Manager Approval"}

// UserApproval is the onboarding checklist a pending sub-user passes before activation.
type UserApproval struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID  uuid.UUID      `gorm:"type:uuid;not null;index"`
	SubUserID  uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:uq_user_approvals_sub_user"`
	Steps      approval.Steps `gorm:"type:jsonb;serializer:json"`
	Status     string         `gorm:"type:varchar(20);not null;default:'pending'"`
	StartedBy  uuid.UUID      `gorm:"type:uuid;not null"`
	ApprovedAt *time.Time
	Version    int64 `gorm:"not null;default:1"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (UserApproval) TableName() string {
	return "user_approvals"
}
