package requirement

import "go-diligince/internal/approval"

type CreateRequirementRequest struct {
	Title       string  `json:"title" binding:"required,max=200"`
	Description string  `json:"description"`
	Category    string  `json:"category" binding:"omitempty,max=60"`
	Budget      float64 `json:"budget" binding:"gte=0"`
	Currency    string  `json:"currency" binding:"omitempty,len=3"`
}

type SubmitRequirementRequest struct {
	Steps []string `json:"steps" binding:"omitempty,dive,required,max=100"`
}

type ApproveStepRequest struct {
	Comments string `json:"comments" binding:"omitempty,max=1000"`
}

type SkipStepRequest struct {
	StepName string `json:"step_name" binding:"required,max=100"`
	Comments string `json:"comments" binding:"omitempty,max=1000"`
}

type RejectRequirementRequest struct {
	Reason string `json:"reason" binding:"required,max=1000"`
}

type ListFilter struct {
	Status string
}

type RequirementResponse struct {
	ID              string         `json:"id"`
	CompanyID       string         `json:"company_id"`
	Number          string         `json:"number"`
	Title           string         `json:"title"`
	Description     string         `json:"description,omitempty"`
	Category        string         `json:"category,omitempty"`
	Budget          float64        `json:"budget"`
	Currency        string         `json:"currency"`
	CreatedBy       string         `json:"created_by"`
	Status          string         `json:"status"`
	ApprovalSteps   approval.Steps `json:"approval_steps"`
	StepsCompleted  int            `json:"steps_completed"`
	StepsTotal      int            `json:"steps_total"`
	RejectionReason *string        `json:"rejection_reason,omitempty"`
	ApprovedAt      *string        `json:"approved_at,omitempty"`
	PublishedAt     *string        `json:"published_at,omitempty"`
	ClosedAt        *string        `json:"closed_at,omitempty"`
	Version         int64          `json:"version"`
	CreatedAt       string         `json:"created_at"`
	UpdatedAt       string         `json:"updated_at"`
}
