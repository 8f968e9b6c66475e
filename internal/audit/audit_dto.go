package audit

type EntryResponse struct {
	ID             string  `json:"id"`
	Action         string  `json:"action"`
	PerformedBy    string  `json:"performed_by"`
	TargetUser     *string `json:"target_user,omitempty"`
	TargetUserType string  `json:"target_user_type,omitempty"`
	CompanyID      string  `json:"company_id"`
	Details        Details `json:"details"`
	Severity       string  `json:"severity"`
	Category       string  `json:"category"`
	Outcome        string  `json:"outcome"`
	CreatedAt      string  `json:"created_at"`
}

type RoleAssignmentResponse struct {
	ID            string `json:"id"`
	UserID        string `json:"user_id"`
	UserType      string `json:"user_type"`
	PreviousRole  string `json:"previous_role,omitempty"`
	NewRole       string `json:"new_role"`
	AssignedBy    string `json:"assigned_by"`
	Reason        string `json:"reason,omitempty"`
	EffectiveDate string `json:"effective_date"`
}
