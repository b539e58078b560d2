package domain

type Role string

const (
	// User can read and manage only their own account.
	RoleUser Role = "User"
	// Admin can manage every account and list all accounts.
	RoleAdmin Role = "Admin"
)

func IsValidRole(r string) bool {
	return r == string(RoleUser) || r == string(RoleAdmin)
}

// ParseRole returns the role for r, or false when r is not one of the enumerated values.
func ParseRole(r string) (Role, bool) {
	if !IsValidRole(r) {
		return "", false
	}
	return Role(r), true
}
