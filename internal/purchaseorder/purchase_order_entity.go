package purchaseorder

import (
	"time"

	"go-diligince/internal/approval"

	"github.com/google/uuid"
)

const (
	StatusPendingApproval = "pending_approval"
	StatusApproved        = "approved"
	StatusRejected        = "rejected"
	StatusIssued          = "issued"
	StatusCancelled       = "cancelled"
)

var DefaultSteps = []string{"Procurement Review", "Finance Approval"}

type PurchaseOrder struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID       uuid.UUID      `gorm:"type:uuid;not null;index:idx_purchase_orders_company_status;uniqueIndex:uq_purchase_orders_company_number"`
	Number          string         `gorm:"type:varchar(20);not null;uniqueIndex:uq_purchase_orders_company_number"`
	RequirementID   *uuid.UUID     `gorm:"type:uuid;index"`
	VendorCompanyID uuid.UUID      `gorm:"type:uuid;not null;index"`
	Amount          float64        `gorm:"type:numeric(18,2);not null"`
	Currency        string         `gorm:"type:varchar(3);not null;default:'USD'"`
	Notes           string         `gorm:"type:text"`
	CreatedBy       uuid.UUID      `gorm:"type:uuid;not null;index"`
	Status          string         `gorm:"type:varchar(20);not null;default:'pending_approval';index:idx_purchase_orders_company_status"`
	ApprovalSteps   approval.Steps `gorm:"type:jsonb;serializer:json"`
	RejectionReason *string        `gorm:"type:text"`
	ApprovedAt      *time.Time
	IssuedAt        *time.Time
	CancelledAt     *time.Time
	Version         int64 `gorm:"not null;default:1"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (PurchaseOrder) TableName() string {
	return "purchase_orders"
}

var statusTransitions = map[string][]string{
	StatusPendingApproval: {StatusApproved, StatusRejected, StatusCancelled},
	StatusApproved:        {StatusIssued, StatusCancelled},
}

func isAllowedStatusTransition(from, to string) bool {
	for _, s := range statusTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}
