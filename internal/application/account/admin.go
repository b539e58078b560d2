package account

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/baechuer/account-service/internal/domain"
	"github.com/baechuer/account-service/internal/validation"
)

// CreateAdmin registers an Admin account.
// When AdminCreateRequiresAdmin is set, only an Admin caller may do this.
func (s *Service) CreateAdmin(ctx context.Context, caller domain.Identity, email, password string) (Profile, error) {
	if s.adminCreateRequiresAdmin {
		if err := RequireAdmin(caller); err != nil {
			s.record(ctx, "admin_create_denied", map[string]string{"actor_id": caller.AccountID})
			return Profile{}, err
		}
	}

	created, err := s.insertAdmin(ctx, email, password)
	if err != nil {
		return Profile{}, err
	}

	s.record(ctx, "admin_created", map[string]string{
		"actor_id":   caller.AccountID,
		"account_id": created.ID,
		"email":      created.Email,
	})
	s.publish(ctx, "account.created", func(ctx context.Context) error {
		return s.pub.PublishAccountCreated(ctx, AccountCreatedEvent{AccountID: created.ID, Role: string(created.Role)})
	})

	return project(created), nil
}

// BootstrapAdmin seeds the first Admin at startup.
// An existing account with the same email is treated as already seeded.
func (s *Service) BootstrapAdmin(ctx context.Context, email, password string) (bool, error) {
	if email == "" && password == "" {
		return false, nil
	}

	created, err := s.insertAdmin(ctx, email, password)
	if err != nil {
		if domain.KindOf(err) == domain.KindConflict {
			return false, nil
		}
		return false, err
	}

	s.record(ctx, "admin_bootstrapped", map[string]string{"account_id": created.ID, "email": created.Email})
	return true, nil
}

func (s *Service) insertAdmin(ctx context.Context, email, password string) (domain.Account, error) {
	email = domain.NormalizeEmail(email)
	if email == "" {
		return domain.Account{}, domain.ErrMissingField("email")
	}
	if !validation.IsEmail(email) {
		return domain.Account{}, domain.ErrInvalidField("email", "must be a valid email address")
	}
	if err := s.checkPassword(password); err != nil {
		return domain.Account{}, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return domain.Account{}, s.fail(ctx, "create_admin", domain.ErrHashFailed(err))
	}

	now := time.Now().UTC()
	created, err := s.accounts.Insert(ctx, domain.Account{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return domain.Account{}, s.fail(ctx, "create_admin", err)
	}
	return created, nil
}
