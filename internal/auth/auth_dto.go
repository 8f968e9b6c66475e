package auth

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	ID           string  `json:"id"`
	CompanyID    string  `json:"company_id"`
	CompanyType  string  `json:"company_type"`
	UserType     string  `json:"user_type"`
	Email        string  `json:"email"`
	Name         string  `json:"name"`
	Role         string  `json:"role,omitempty"`
	CustomRoleID *string `json:"custom_role_id,omitempty"`
}
