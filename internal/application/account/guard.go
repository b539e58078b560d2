package account

import (
	"context"
	"strings"

	"github.com/baechuer/account-service/internal/domain"
)

// AccountReader is the slice of AccountRepo the guard needs.
type AccountReader interface {
	FindByID(ctx context.Context, id string) (domain.Account, error)
}

// Guard decides whether a caller may act on an account-scoped resource.
//
// Order of evaluation:
//  1. anonymous caller            -> not_authenticated
//  2. target account missing      -> account_not_found
//  3. neither owner nor Admin     -> forbidden
type Guard struct {
	accounts AccountReader
}

func NewGuard(accounts AccountReader) *Guard {
	return &Guard{accounts: accounts}
}

// Decide applies the Owner and Admin rules only. It does not touch the store.
func Decide(caller domain.Identity, targetID string) error {
	if !caller.Authenticated() {
		return domain.ErrNotAuthenticated()
	}
	if caller.IsAdmin() {
		return nil
	}
	if caller.AccountID == strings.TrimSpace(targetID) {
		return nil
	}
	return domain.ErrForbidden()
}

// RequireAdmin is the Admin rule with no ownership fallback.
func RequireAdmin(caller domain.Identity) error {
	if !caller.Authenticated() {
		return domain.ErrNotAuthenticated()
	}
	if !caller.IsAdmin() {
		return domain.ErrInsufficientRole(domain.RoleAdmin)
	}
	return nil
}

// OwnerOrAdmin resolves the target and then applies Decide.
// The loaded account is returned so callers avoid a second lookup.
func (g *Guard) OwnerOrAdmin(ctx context.Context, caller domain.Identity, targetID string) (domain.Account, error) {
	if !caller.Authenticated() {
		return domain.Account{}, domain.ErrNotAuthenticated()
	}

	targetID = strings.TrimSpace(targetID)
	if targetID == "" {
		return domain.Account{}, domain.ErrMissingField("id")
	}

	target, err := g.accounts.FindByID(ctx, targetID)
	if err != nil {
		return domain.Account{}, err
	}

	if err := Decide(caller, target.ID); err != nil {
		return domain.Account{}, err
	}
	return target, nil
}
