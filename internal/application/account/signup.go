package account

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/baechuer/account-service/internal/domain"
	"github.com/baechuer/account-service/internal/validation"
)

type SignupInput struct {
	Email        string
	Phone        string
	Name         string
	Password     string
	ProfileImage string
}

// Signup registers a new User account. Signup never yields an Admin.
func (s *Service) Signup(ctx context.Context, in SignupInput) (Profile, error) {
	email := domain.NormalizeEmail(in.Email)
	phone := domain.NormalizePhone(in.Phone)
	name := strings.TrimSpace(in.Name)

	if email == "" && phone == "" {
		return Profile{}, domain.ErrIdentifierRequired()
	}
	if email != "" && !validation.IsEmail(email) {
		return Profile{}, domain.ErrInvalidField("email", "must be a valid email address")
	}
	if phone != "" && !validation.IsPhone(phone) {
		return Profile{}, domain.ErrInvalidField("phone", "must be a valid phone number")
	}
	if name == "" {
		return Profile{}, domain.ErrMissingField("name")
	}
	if err := s.checkPassword(in.Password); err != nil {
		return Profile{}, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return Profile{}, s.fail(ctx, "signup", domain.ErrHashFailed(err))
	}

	now := time.Now().UTC()
	created, err := s.accounts.Insert(ctx, domain.Account{
		ID:           uuid.NewString(),
		Email:        email,
		Phone:        phone,
		Name:         name,
		ProfileImage: strings.TrimSpace(in.ProfileImage),
		PasswordHash: hash,
		Role:         domain.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		if domain.KindOf(err) == domain.KindConflict {
			s.record(ctx, "signup_conflict", map[string]string{"email": email, "phone": phone})
		}
		return Profile{}, s.fail(ctx, "signup", err)
	}

	s.record(ctx, "signup", map[string]string{"account_id": created.ID, "email": created.Email})
	s.publish(ctx, "account.created", func(ctx context.Context) error {
		return s.pub.PublishAccountCreated(ctx, AccountCreatedEvent{
			AccountID: created.ID,
			Role:      string(created.Role),
		})
	})

	return project(created), nil
}

func (s *Service) checkPassword(pw string) error {
	if pw == "" {
		return domain.ErrMissingField("password")
	}
	if len([]rune(pw)) < s.minPasswordLen {
		return domain.ErrWeakPassword(fmt.Sprintf("password must be at least %d characters", s.minPasswordLen))
	}
	// bcrypt rejects longer input.
	if len(pw) > MaxPasswordBytes {
		return domain.ErrWeakPassword(fmt.Sprintf("password must be at most %d bytes", MaxPasswordBytes))
	}
	return nil
}
