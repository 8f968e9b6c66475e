package purchaseorder

import "go-diligince/internal/approval"

type CreatePurchaseOrderRequest struct {
	RequirementID   string   `json:"requirement_id" binding:"omitempty,uuid"`
	VendorCompanyID string   `json:"vendor_company_id" binding:"required,uuid"`
	Amount          float64  `json:"amount" binding:"required,gt=0"`
	Currency        string   `json:"currency" binding:"omitempty,len=3"`
	Notes           string   `json:"notes" binding:"omitempty,max=2000"`
	Steps           []string `json:"steps" binding:"omitempty,dive,required,max=100"`
}

type ApproveStepRequest struct {
	Comments string `json:"comments" binding:"omitempty,max=1000"`
}

type RejectPurchaseOrderRequest struct {
	Reason string `json:"reason" binding:"required,max=1000"`
}

type ListFilter struct {
	Status          string
	VendorCompanyID string
}

type PurchaseOrderResponse struct {
	ID              string         `json:"id"`
	CompanyID       string         `json:"company_id"`
	Number          string         `json:"number"`
	RequirementID   *string        `json:"requirement_id,omitempty"`
	VendorCompanyID string         `json:"vendor_company_id"`
	Amount          float64        `json:"amount"`
	Currency        string         `json:"currency"`
	Notes           string         `json:"notes,omitempty"`
	CreatedBy       string         `json:"created_by"`
	Status          string         `json:"status"`
	ApprovalSteps   approval.Steps `json:"approval_steps"`
	RejectionReason *string        `json:"rejection_reason,omitempty"`
	ApprovedAt      *string        `json:"approved_at,omitempty"`
	IssuedAt        *string        `json:"issued_at,omitempty"`
	CancelledAt     *string        `json:"cancelled_at,omitempty"`
	Version         int64          `json:"version"`
	CreatedAt       string         `json:"created_at"`
}
