package account

import (
	"context"
	"strings"

	"github.com/baechuer/account-service/internal/domain"
)

// GetAccount returns the target's projection to its owner or an Admin.
func (s *Service) GetAccount(ctx context.Context, caller domain.Identity, targetID string) (Profile, error) {
	a, err := s.guard.OwnerOrAdmin(ctx, caller, targetID)
	if err != nil {
		return Profile{}, s.fail(ctx, "get_account", err)
	}
	return project(a), nil
}

// Me is GetAccount on the caller's own id.
func (s *Service) Me(ctx context.Context, caller domain.Identity) (Profile, error) {
	if !caller.Authenticated() {
		return Profile{}, domain.ErrNotAuthenticated()
	}
	return s.GetAccount(ctx, caller, caller.AccountID)
}

// ModifyProfile applies a partial update of name and/or profile image.
func (s *Service) ModifyProfile(ctx context.Context, caller domain.Identity, targetID string, patch domain.AccountPatch) (Profile, error) {
	target, err := s.guard.OwnerOrAdmin(ctx, caller, targetID)
	if err != nil {
		return Profile{}, s.fail(ctx, "modify_profile", err)
	}

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return Profile{}, domain.ErrInvalidField("name", "must not be empty")
		}
		patch.Name = &name
	}
	if patch.ProfileImage != nil {
		img := strings.TrimSpace(*patch.ProfileImage)
		patch.ProfileImage = &img
	}

	if patch.Empty() {
		return project(target), nil
	}

	updated, err := s.accounts.Update(ctx, target.ID, patch)
	if err != nil {
		return Profile{}, s.fail(ctx, "modify_profile", err)
	}

	s.record(ctx, "profile_updated", map[string]string{"actor_id": caller.AccountID, "account_id": updated.ID})
	return project(updated), nil
}
