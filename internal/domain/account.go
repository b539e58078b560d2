package domain

import (
	"strings"
	"time"
)

// Account is a stored identity with credentials and a role.
// Email and Phone are empty when absent; at least one is set.
type Account struct {
	ID           string
	Email        string
	Phone        string
	Name         string
	ProfileImage string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (a Account) IsAdmin() bool { return a.Role == RoleAdmin }

// AccountPatch carries a partial profile update. Nil fields are left unchanged.
type AccountPatch struct {
	Name         *string
	ProfileImage *string
}

func (p AccountPatch) Empty() bool {
	return p.Name == nil && p.ProfileImage == nil
}

// Apply returns a copy of a with the patch fields written over it.
func (p AccountPatch) Apply(a Account) Account {
	if p.Name != nil {
		a.Name = *p.Name
	}
	if p.ProfileImage != nil {
		a.ProfileImage = *p.ProfileImage
	}
	return a
}

// NormalizeEmail lowercases and trims an email so uniqueness is case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

var phoneSeparators = strings.NewReplacer(" ", "", "-", "")

// NormalizePhone trims and drops spaces and dashes, so "+1 555-0001" and
// "+15550001" are stored and looked up as the same number.
func NormalizePhone(phone string) string {
	return phoneSeparators.Replace(strings.TrimSpace(phone))
}

// Identity is the verified caller extracted from a session token.
// The zero value is the anonymous caller.
type Identity struct {
	AccountID string
	Role      Role
}

func (i Identity) Authenticated() bool {
	return strings.TrimSpace(i.AccountID) != ""
}

func (i Identity) IsAdmin() bool {
	return i.Authenticated() && i.Role == RoleAdmin
}
