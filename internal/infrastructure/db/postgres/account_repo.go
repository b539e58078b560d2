package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/baechuer/account-service/internal/domain"
)

const uniqueViolation = "23505"

type AccountRepo struct {
	db *sql.DB
}

func NewAccountRepo(db *sql.DB) *AccountRepo {
	return &AccountRepo{db: db}
}

func (r *AccountRepo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *AccountRepo) FindByEmailOrPhone(ctx context.Context, identifier string) (domain.Account, error) {
	email := domain.NormalizeEmail(identifier)
	phone := domain.NormalizePhone(identifier)
	if email == "" && phone == "" {
		return domain.Account{}, domain.ErrAccountNotFound()
	}

	q := `
SELECT ` + accountColumns + `
FROM accounts
WHERE email = $1 OR phone = $2
ORDER BY created_at
LIMIT 1;
`
	ar, err := scanAccountRow(r.db.QueryRowContext(ctx, q, email, phone))
	if err != nil {
		if isNoRows(err) {
			return domain.Account{}, domain.ErrAccountNotFound()
		}
		return domain.Account{}, domain.ErrStorage(err)
	}
	return toDomainAccount(ar), nil
}

func (r *AccountRepo) FindByID(ctx context.Context, id string) (domain.Account, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Account{}, domain.ErrMissingField("id")
	}

	q := `
SELECT ` + accountColumns + `
FROM accounts
WHERE id = $1
LIMIT 1;
`
	ar, err := scanAccountRow(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if isNoRows(err) {
			return domain.Account{}, domain.ErrAccountNotFound()
		}
		return domain.Account{}, domain.ErrStorage(err)
	}
	return toDomainAccount(ar), nil
}

// Insert relies on the uq_accounts_email / uq_accounts_phone constraints;
// there is no pre-check, so concurrent duplicates resolve in the database.
func (r *AccountRepo) Insert(ctx context.Context, a domain.Account) (domain.Account, error) {
	a.Email = domain.NormalizeEmail(a.Email)
	a.Phone = domain.NormalizePhone(a.Phone)
	if a.ID == "" {
		return domain.Account{}, domain.ErrMissingField("id")
	}
	if a.Email == "" && a.Phone == "" {
		return domain.Account{}, domain.ErrIdentifierRequired()
	}
	if a.PasswordHash == "" {
		return domain.Account{}, domain.ErrMissingField("password_hash")
	}
	if a.Role == "" {
		a.Role = domain.RoleUser
	}

	q := `
INSERT INTO accounts (id, email, phone, name, profile_image, password_hash, role)
VALUES ($1,$2,$3,$4,$5,$6,$7)
RETURNING ` + accountColumns + `;
`
	ar, err := scanAccountRow(r.db.QueryRowContext(ctx, q,
		a.ID, nullIfEmpty(a.Email), nullIfEmpty(a.Phone), a.Name, nullIfEmpty(a.ProfileImage), a.PasswordHash, string(a.Role),
	))
	if err != nil {
		if cerr := conflictFromPg(err); cerr != nil {
			return domain.Account{}, cerr
		}
		return domain.Account{}, domain.ErrStorage(err)
	}
	return toDomainAccount(ar), nil
}

func (r *AccountRepo) Update(ctx context.Context, id string, patch domain.AccountPatch) (domain.Account, error) {
	const q = `
UPDATE accounts
SET name = COALESCE($2, name),
    profile_image = COALESCE($3, profile_image),
    updated_at = NOW()
WHERE id = $1
RETURNING ` + accountColumns + `;
`
	ar, err := scanAccountRow(r.db.QueryRowContext(ctx, q, id, patchArg(patch.Name), patchArg(patch.ProfileImage)))
	if err != nil {
		if isNoRows(err) {
			return domain.Account{}, domain.ErrAccountNotFound()
		}
		return domain.Account{}, domain.ErrStorage(err)
	}
	return toDomainAccount(ar), nil
}

func (r *AccountRepo) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = $1;`, id)
	if err != nil {
		return false, domain.ErrStorage(err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *AccountRepo) ListAll(ctx context.Context) ([]domain.Account, error) {
	q := `
SELECT ` + accountColumns + `
FROM accounts
ORDER BY created_at, id;
`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, domain.ErrStorage(err)
	}
	defer rows.Close()

	out := []domain.Account{}
	for rows.Next() {
		ar, err := scanAccountRow(rows)
		if err != nil {
			return nil, domain.ErrStorage(err)
		}
		out = append(out, toDomainAccount(ar))
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrStorage(err)
	}
	return out, nil
}

func conflictFromPg(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return nil
	}
	switch pgErr.ConstraintName {
	case "uq_accounts_email":
		return domain.ErrEmailAlreadyExists()
	case "uq_accounts_phone":
		return domain.ErrPhoneAlreadyExists()
	default:
		return domain.ErrAccountExists()
	}
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
