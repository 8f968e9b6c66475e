package userapproval

import "go-diligince/internal/approval"

type StartRequest struct {
	SubUserID string   `json:"sub_user_id" binding:"required,uuid"`
	Steps     []string `json:"steps" binding:"omitempty,dive,required,max=100"`
}

type ApproveStepRequest struct {
	Comments string `json:"comments" binding:"omitempty,max=1000"`
}

type UserApprovalResponse struct {
	ID             string         `json:"id"`
	CompanyID      string         `json:"company_id"`
	SubUserID      string         `json:"sub_user_id"`
	Steps          approval.Steps `json:"steps"`
	StepsCompleted int            `json:"steps_completed"`
	StepsTotal     int            `json:"steps_total"`
	Status         string         `json:"status"`
	StartedBy      string         `json:"started_by"`
	ApprovedAt     *string        `json:"approved_at,omitempty"`
	Version        int64          `json:"version"`
}
