package account

import (
	"context"

	"github.com/baechuer/account-service/internal/domain"
)

// ListAccounts is Admin-only.
func (s *Service) ListAccounts(ctx context.Context, caller domain.Identity) ([]Profile, error) {
	if err := RequireAdmin(caller); err != nil {
		return nil, err
	}

	all, err := s.accounts.ListAll(ctx)
	if err != nil {
		return nil, s.fail(ctx, "list_accounts", err)
	}

	out := make([]Profile, 0, len(all))
	for _, a := range all {
		out = append(out, project(a))
	}
	return out, nil
}
