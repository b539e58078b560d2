package account

import (
	"context"
	"strings"
	"time"

	"github.com/baechuer/account-service/internal/domain"
)

type LoginResult struct {
	Token     string
	TokenType string
	ExpiresIn time.Duration
	Account   Profile
}

// Login authenticates by email or phone and issues a session token.
// IMPORTANT: unknown identifier and wrong password must be indistinguishable.
func (s *Service) Login(ctx context.Context, identifier, password string) (LoginResult, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return LoginResult{}, domain.ErrInvalidCredentials()
	}

	a, err := s.accounts.FindByEmailOrPhone(ctx, identifier)
	if err != nil {
		if domain.KindOf(err) == domain.KindNotFound {
			s.compareDummy(password)
			s.record(ctx, "login_failed", map[string]string{"identifier": identifier})
			return LoginResult{}, domain.ErrInvalidCredentials()
		}
		return LoginResult{}, s.fail(ctx, "login", err)
	}

	if !s.hasher.Verify(password, a.PasswordHash) {
		s.record(ctx, "login_failed", map[string]string{"identifier": identifier})
		return LoginResult{}, domain.ErrInvalidCredentials()
	}

	token, exp, err := s.signer.Issue(a.ID, a.Role)
	if err != nil {
		return LoginResult{}, s.fail(ctx, "login", domain.ErrTokenSignFailed(err))
	}

	s.record(ctx, "login", map[string]string{"account_id": a.ID, "role": string(a.Role)})

	return LoginResult{
		Token:     token,
		TokenType: "Bearer",
		ExpiresIn: time.Until(exp).Round(time.Second),
		Account:   project(a),
	}, nil
}

// VerifyToken resolves a bearer token to the caller identity.
func (s *Service) VerifyToken(token string) (domain.Identity, error) {
	claims, err := s.signer.Verify(token)
	if err != nil {
		return domain.Identity{}, err
	}
	return claims.Identity(), nil
}
