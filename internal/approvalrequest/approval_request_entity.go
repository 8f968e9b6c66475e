package approvalrequest

import (
	"time"

	"go-diligince/internal/domain"

	"github.com/google/uuid"
)

const (
	TypeRoleChange       = "role_change"
	TypePermissionChange = "permission_change"
	TypeStatusChange     = "status_change"

	StatusPending   = "pending"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
	StatusCancelled = "cancelled"

	ActionApprove = "approve"
	ActionReject  = "reject"
)

// Approver is one designated decision maker on a request.
type Approver struct {
	UserID     string     `json:"user_id"`
	Level      int        `json:"level"`
	Status     string     `json:"status"`
	Comments   string     `json:"comments,omitempty"`
	ActionDate *time.Time `json:"action_date,omitempty"`
}

type UserApprovalRequest struct {
	ID                uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID         uuid.UUID        `gorm:"type:uuid;not null;index:idx_approval_requests_company_status"`
	RequestType       string           `gorm:"type:varchar(30);not null"`
	TargetUserID      uuid.UUID        `gorm:"type:uuid;not null;index"`
	TargetUserType    string           `gorm:"type:varchar(10);not null"`
	RequestData       domain.ChangeSet `gorm:"type:jsonb;serializer:json"`
	Reason            string           `gorm:"type:text"`
	ApprovalLevel     int              `gorm:"not null;default:1"`
	Approvers         []Approver       `gorm:"type:jsonb;serializer:json"`
	Status            string           `gorm:"type:varchar(20);not null;default:'pending';index:idx_approval_requests_company_status"`
	RequestedBy       uuid.UUID        `gorm:"type:uuid;not null;index"`
	FinalApprover     *uuid.UUID       `gorm:"type:uuid"`
	FinalApprovalDate *time.Time
	RejectionReason   *string `gorm:"type:text"`
	Version           int64   `gorm:"not null;default:1"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (UserApprovalRequest) TableName() string {
	return "user_approval_requests"
}

// designated reports whether userID is on the approver list. An empty list
// leaves the decision to route-level permission alone.
func (r *UserApprovalRequest) designated(userID string) (int, bool) {
	for i, a := range r.Approvers {
		if a.UserID == userID {
			return i, true
		}
	}
	return -1, len(r.Approvers) == 0
}
