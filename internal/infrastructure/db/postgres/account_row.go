package postgres

import (
	"database/sql"
	"time"

	"github.com/baechuer/account-service/internal/domain"
)

type accountRow struct {
	ID           string
	Email        sql.NullString
	Phone        sql.NullString
	Name         string
	ProfileImage sql.NullString
	PasswordHash string
	Role         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

const accountColumns = `id, email, phone, name, profile_image, password_hash, role, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccountRow(s rowScanner) (accountRow, error) {
	var ar accountRow
	err := s.Scan(
		&ar.ID,
		&ar.Email,
		&ar.Phone,
		&ar.Name,
		&ar.ProfileImage,
		&ar.PasswordHash,
		&ar.Role,
		&ar.CreatedAt,
		&ar.UpdatedAt,
	)
	return ar, err
}

func toDomainAccount(ar accountRow) domain.Account {
	return domain.Account{
		ID:           ar.ID,
		Email:        ar.Email.String,
		Phone:        ar.Phone.String,
		Name:         ar.Name,
		ProfileImage: ar.ProfileImage.String,
		PasswordHash: ar.PasswordHash,
		Role:         domain.Role(ar.Role),
		CreatedAt:    ar.CreatedAt,
		UpdatedAt:    ar.UpdatedAt,
	}
}

// nullIfEmpty stores absent identifiers as NULL so UNIQUE ignores them.
func nullIfEmpty(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func patchArg(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}
