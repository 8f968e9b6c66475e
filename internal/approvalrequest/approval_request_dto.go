package approvalrequest

import "go-diligince/internal/domain"

type CreateApprovalRequest struct {
	RequestType    string           `json:"request_type" binding:"required,oneof=role_change permission_change status_change"`
	TargetUserID   string           `json:"target_user_id" binding:"required,uuid"`
	TargetUserType string           `json:"target_user_type" binding:"required,oneof=User SubUser"`
	RequestData    domain.ChangeSet `json:"request_data"`
	Reason         string           `json:"reason" binding:"omitempty,max=1000"`
	ApprovalLevel  int              `json:"approval_level" binding:"omitempty,min=1,max=5"`
	ApproverIDs    []string         `json:"approver_ids" binding:"omitempty,dive,uuid"`
}

type ProcessApprovalRequest struct {
	Action   string `json:"action" binding:"required,oneof=approve reject"`
	Comments string `json:"comments" binding:"omitempty,max=1000"`
}

type ListFilter struct {
	Status       string
	RequestType  string
	TargetUserID string
}

type ApprovalRequestResponse struct {
	ID                string           `json:"id"`
	CompanyID         string           `json:"company_id"`
	RequestType       string           `json:"request_type"`
	TargetUserID      string           `json:"target_user_id"`
	TargetUserType    string           `json:"target_user_type"`
	RequestData       domain.ChangeSet `json:"request_data"`
	Reason            string           `json:"reason,omitempty"`
	ApprovalLevel     int              `json:"approval_level"`
	Approvers         []Approver       `json:"approvers"`
	Status            string           `json:"status"`
	RequestedBy       string           `json:"requested_by"`
	FinalApprover     *string          `json:"final_approver,omitempty"`
	FinalApprovalDate *string          `json:"final_approval_date,omitempty"`
	RejectionReason   *string          `json:"rejection_reason,omitempty"`
	Version           int64            `json:"version"`
	CreatedAt         string           `json:"created_at"`
}
