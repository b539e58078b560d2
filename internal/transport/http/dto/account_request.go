package dto

import (
	"strings"

	"github.com/baechuer/account-service/internal/domain"
	"github.com/baechuer/account-service/internal/validation"
)

// -------- Signup / Login --------

type SignupRequest struct {
	Email        string `json:"email" validate:"omitempty,email,max=254"`
	Phone        string `json:"phone" validate:"required_without=Email,omitempty,phone"`
	Name         string `json:"name" validate:"required,max=200"`
	Password     string `json:"password" validate:"required,min=5,maxbytes=72"`
	ProfileImage string `json:"profileImage" validate:"omitempty,max=2048"`
}

func (r *SignupRequest) Normalize() {
	r.Email = strings.TrimSpace(r.Email)
	r.Phone = domain.NormalizePhone(r.Phone)
	r.Name = strings.TrimSpace(r.Name)
	r.ProfileImage = strings.TrimSpace(r.ProfileImage)
}

func (r *SignupRequest) Validate() error {
	return validation.Struct(r)
}

// LoginRequest accepts a single identifier, or email / phone for older clients.
// Fields are not validated here: every failure must surface as invalid_credentials.
type LoginRequest struct {
	Identifier string `json:"identifier"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Password   string `json:"password"`
}

// LoginIdentifier returns the first non-empty identifier.
func (r *LoginRequest) LoginIdentifier() string {
	for _, v := range []string{r.Identifier, r.Email, r.Phone} {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// -------- Admin --------

// CreateAdminRequest is validated by the service after the admin policy check,
// so an unauthorized caller learns nothing about the input.
type CreateAdminRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *CreateAdminRequest) Normalize() {
	r.Email = strings.TrimSpace(r.Email)
}

// -------- Profile --------

// UpdateProfileRequest is a partial update; absent fields stay unchanged.
type UpdateProfileRequest struct {
	Name         *string `json:"name" validate:"omitempty,max=200"`
	ProfileImage *string `json:"profileImage" validate:"omitempty,max=2048"`
}

func (r *UpdateProfileRequest) Validate() error {
	return validation.Struct(r)
}
