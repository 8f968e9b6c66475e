package auth

// Account is the login view over users and sub-users. It is read-only and
// never migrated.
type Account struct {
	ID           string
	CompanyID    string
	CompanyType  string
	UserType     string
	Email        string
	Name         string
	PasswordHash string
	Role         string
	CustomRoleID *string
	Active       bool
}
