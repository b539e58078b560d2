package memory

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/baechuer/account-service/internal/application/account"
)

// NoopPublisher logs events instead of sending them. Used when no broker is configured.
type NoopPublisher struct {
	log zerolog.Logger
}

func NewNoopPublisher(log zerolog.Logger) *NoopPublisher {
	return &NoopPublisher{log: log.With().Str("component", "noop-pub").Logger()}
}

func (p *NoopPublisher) PublishAccountCreated(ctx context.Context, evt account.AccountCreatedEvent) error {
	p.log.Debug().Str("account_id", evt.AccountID).Str("role", evt.Role).Msg("account created")
	return nil
}

func (p *NoopPublisher) PublishAccountDeleted(ctx context.Context, evt account.AccountDeletedEvent) error {
	p.log.Debug().Str("account_id", evt.AccountID).Str("actor_id", evt.ActorID).Msg("account deleted")
	return nil
}

func (p *NoopPublisher) PublishProfileImageUpdated(ctx context.Context, evt account.ProfileImageUpdatedEvent) error {
	p.log.Debug().Str("account_id", evt.AccountID).Str("old_image", evt.OldImage).Msg("profile image updated")
	return nil
}
