package requirement

import (
	"time"

	"go-diligince/internal/approval"

	"github.com/google/uuid"
)

const (
	StatusDraft           = "draft"
	StatusPendingApproval = "pending_approval"
	StatusApproved        = "approved"
	StatusPublished       = "published"
	StatusClosed          = "closed"
	StatusRejected        = "rejected"
)

// DefaultSteps is used when a requirement is submitted without a checklist.
var DefaultSteps = []string{"Technical Review", "Budget Approval"}

type Requirement struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID       uuid.UUID      `gorm:"type:uuid;not null;index:idx_requirements_company_status;uniqueIndex:uq_requirements_company_number"`
	Number          string         `gorm:"type:varchar(20);not null;uniqueIndex:uq_requirements_company_number"`
	Title           string         `gorm:"type:varchar(200);not null"`
	Description     string         `gorm:"type:text"`
	Category        string         `gorm:"type:varchar(60)"`
	Budget          float64        `gorm:"type:numeric(18,2);not null;default:0"`
	Currency        string         `gorm:"type:varchar(3);not null;default:'USD'"`
	CreatedBy       uuid.UUID      `gorm:"type:uuid;not null;index"`
	Status          string         `gorm:"type:varchar(20);not null;default:'draft';index:idx_requirements_company_status"`
	ApprovalSteps   approval.Steps `gorm:"type:jsonb;serializer:json"`
	RejectionReason *string        `gorm:"type:text"`
	ApprovedAt      *time.Time
	PublishedAt     *time.Time
	ClosedAt        *time.Time
	Version         int64 `gorm:"not null;default:1"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

var statusTransitions = map[string][]string{
	StatusDraft:           {StatusPendingApproval},
	StatusPendingApproval: {StatusApproved, StatusRejected},
	StatusApproved:        {StatusPublished},
	StatusPublished:       {StatusClosed},
}

func isAllowedStatusTransition(from, to string) bool {
	for _, s := range statusTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}
