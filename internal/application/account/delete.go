package account

import (
	"context"

	"github.com/baechuer/account-service/internal/domain"
)

func (s *Service) DeleteAccount(ctx context.Context, caller domain.Identity, targetID string) error {
	target, err := s.guard.OwnerOrAdmin(ctx, caller, targetID)
	if err != nil {
		return s.fail(ctx, "delete_account", err)
	}

	removed, err := s.accounts.Delete(ctx, target.ID)
	if err != nil {
		return s.fail(ctx, "delete_account", err)
	}
	if !removed {
		return domain.ErrAccountNotFound()
	}

	s.record(ctx, "account_deleted", map[string]string{"actor_id": caller.AccountID, "account_id": target.ID})
	s.publish(ctx, "account.deleted", func(ctx context.Context) error {
		return s.pub.PublishAccountDeleted(ctx, AccountDeletedEvent{AccountID: target.ID, ActorID: caller.AccountID})
	})
	return nil
}
