package dto

import (
	"time"

	"github.com/baechuer/account-service/internal/application/account"
)

type AccountResponse struct {
	ID           string    `json:"id"`
	Email        string    `json:"email,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	Name         string    `json:"name"`
	ProfileImage string    `json:"profileImage,omitempty"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func FromProfile(p account.Profile) AccountResponse {
	return AccountResponse{
		ID:           p.ID,
		Email:        p.Email,
		Phone:        p.Phone,
		Name:         p.Name,
		ProfileImage: p.ProfileImage,
		Role:         string(p.Role),
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

func FromProfiles(ps []account.Profile) []AccountResponse {
	out := make([]AccountResponse, 0, len(ps))
	for _, p := range ps {
		out = append(out, FromProfile(p))
	}
	return out
}

type LoginResponse struct {
	Token     string          `json:"token"`
	TokenType string          `json:"token_type"` // "Bearer"
	ExpiresIn int64           `json:"expires_in"` // seconds
	Account   AccountResponse `json:"account"`
}

func FromLoginResult(res account.LoginResult) LoginResponse {
	return LoginResponse{
		Token:     res.Token,
		TokenType: res.TokenType,
		ExpiresIn: int64(res.ExpiresIn.Seconds()),
		Account:   FromProfile(res.Account),
	}
}

type ListAccountsResponse struct {
	Accounts []AccountResponse `json:"accounts"`
	Count    int               `json:"count"`
}
