package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baechuer/account-service/internal/domain"
)

var columns = []string{"id", "email", "phone", "name", "profile_image", "password_hash", "role", "created_at", "updated_at"}

func newMockRepo(t *testing.T) (*AccountRepo, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return NewAccountRepo(db), mock
}

func accountRows(now time.Time) *sqlmock.Rows {
	return sqlmock.NewRows(columns).
		AddRow("u1", "a@x.com", nil, "Ann", nil, "$2a$10$hash", "User", now, now)
}

func TestFindByEmailOrPhone_NormalizesAndMaps(t *testing.T) {
	t.Parallel()

	repo, mock := newMockRepo(t)
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT (.+) FROM accounts WHERE email = \$1 OR phone = \$2`).
		WithArgs("a@x.com", "A@X.com").
		WillReturnRows(accountRows(now))

	a, err := repo.FindByEmailOrPhone(context.Background(), " A@X.com ")
	require.NoError(t, err)
	assert.Equal(t, "u1", a.ID)
	assert.Equal(t, "a@x.com", a.Email)
	assert.Equal(t, "", a.Phone)
	assert.Equal(t, "", a.ProfileImage)
	assert.Equal(t, domain.RoleUser, a.Role)
}

func TestFindByEmailOrPhone_NoRows_NotFound(t *testing.T) {
	t.Parallel()

	repo, mock := newMockRepo(t)
	mock.ExpectQuery(`FROM accounts`).WillReturnRows(sqlmock.NewRows(columns))

	_, err := repo.FindByEmailOrPhone(context.Background(), "ghost@x.com")
	assert.True(t, domain.Is(err, "account_not_found"), "got %v", err)
}

func TestFindByID_DBError_IsStorageFailure(t *testing.T) {
	t.Parallel()

	repo, mock := newMockRepo(t)
	mock.ExpectQuery(`WHERE id = \$1`).WithArgs("u1").WillReturnError(errors.New("conn refused"))

	_, err := repo.FindByID(context.Background(), "u1")
	assert.True(t, domain.Is(err, "storage_failed"), "got %v", err)
	assert.Equal(t, domain.KindInternal, domain.KindOf(err))
}

func TestFindByID_Blank(t *testing.T) {
	t.Parallel()

	repo, _ := newMockRepo(t)
	_, err := repo.FindByID(context.Background(), "  ")
	assert.True(t, domain.Is(err, "missing_field"))
}

func TestInsert_StoresNullsForAbsentIdentifiers(t *testing.T) {
	t.Parallel()

	repo, mock := newMockRepo(t)
	now := time.Now().UTC()

	mock.ExpectQuery(`INSERT INTO accounts`).
		WithArgs("u1",
			sql.NullString{String: "a@x.com", Valid: true},
			sql.NullString{},
			"Ann",
			sql.NullString{},
			"$2a$10$hash",
			"User",
		).
		WillReturnRows(accountRows(now))

	a, err := repo.Insert(context.Background(), domain.Account{ID: "u1", Email: "A@x.com", Name: "Ann", PasswordHash: "$2a$10$hash"})
	require.NoError(t, err)
	assert.Equal(t, "u1", a.ID)
}

func TestPhone_CanonicalFormReachesUniqueConstraint(t *testing.T) {
	t.Parallel()

	repo, mock := newMockRepo(t)
	now := time.Now().UTC()
	row := func() *sqlmock.Rows {
		return sqlmock.NewRows(columns).AddRow("u1", nil, "+15550001", "Ann", nil, "$2a$10$hash", "User", now, now)
	}

	mock.ExpectQuery(`INSERT INTO accounts`).
		WithArgs("u1",
			sql.NullString{},
			sql.NullString{String: "+15550001", Valid: true},
			"Ann",
			sql.NullString{},
			"$2a$10$hash",
			"User",
		).
		WillReturnRows(row())

	mock.ExpectQuery(`FROM accounts WHERE email = \$1 OR phone = \$2`).
		WithArgs("+1 555-0001", "+15550001").
		WillReturnRows(row())

	_, err := repo.Insert(context.Background(), domain.Account{ID: "u1", Phone: "+1 555-0001", Name: "Ann", PasswordHash: "$2a$10$hash"})
	require.NoError(t, err)

	a, err := repo.FindByEmailOrPhone(context.Background(), "+1 555-0001")
	require.NoError(t, err)
	assert.Equal(t, "+15550001", a.Phone)
}

func TestInsert_UniqueViolation_MapsConstraint(t *testing.T) {
	t.Parallel()

	cases := []struct {
		constraint string
		field      string
	}{
		{"uq_accounts_email", "email"},
		{"uq_accounts_phone", "phone"},
		{"accounts_pkey", ""},
	}

	for _, tc := range cases {
		t.Run(tc.constraint, func(t *testing.T) {
			t.Parallel()

			repo, mock := newMockRepo(t)
			mock.ExpectQuery(`INSERT INTO accounts`).
				WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: tc.constraint})

			_, err := repo.Insert(context.Background(), domain.Account{ID: "u1", Email: "a@x.com", Phone: "5551234567", PasswordHash: "h"})
			require.Error(t, err)
			assert.Equal(t, domain.KindConflict, domain.KindOf(err))

			var de *domain.Error
			require.ErrorAs(t, err, &de)
			assert.Equal(t, tc.field, de.Meta["field"])
		})
	}
}

func TestInsert_Validation(t *testing.T) {
	t.Parallel()

	repo, _ := newMockRepo(t)
	_, err := repo.Insert(context.Background(), domain.Account{ID: "u1", PasswordHash: "h"})
	assert.True(t, domain.Is(err, "identifier_required"))

	_, err = repo.Insert(context.Background(), domain.Account{ID: "u1", Email: "a@x.com"})
	assert.True(t, domain.Is(err, "missing_field"))
}

func TestUpdate_PartialPatch(t *testing.T) {
	t.Parallel()

	repo, mock := newMockRepo(t)
	now := time.Now().UTC()
	name := "Ann"

	mock.ExpectQuery(`UPDATE accounts SET name = COALESCE\(\$2, name\)`).
		WithArgs("u1", "Ann", nil).
		WillReturnRows(accountRows(now))

	a, err := repo.Update(context.Background(), "u1", domain.AccountPatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Ann", a.Name)
}

func TestUpdate_Missing_NotFound(t *testing.T) {
	t.Parallel()

	repo, mock := newMockRepo(t)
	mock.ExpectQuery(`UPDATE accounts`).WillReturnRows(sqlmock.NewRows(columns))

	img := "/uploads/x.png"
	_, err := repo.Update(context.Background(), "gone", domain.AccountPatch{ProfileImage: &img})
	assert.True(t, domain.Is(err, "account_not_found"))
}

func TestDelete_ReportsRowsAffected(t *testing.T) {
	t.Parallel()

	repo, mock := newMockRepo(t)
	mock.ExpectExec(`DELETE FROM accounts WHERE id = \$1`).WithArgs("u1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM accounts`).WithArgs("u1").WillReturnResult(sqlmock.NewResult(0, 0))

	removed, err := repo.Delete(context.Background(), "u1")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = repo.Delete(context.Background(), "u1")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestListAll(t *testing.T) {
	t.Parallel()

	repo, mock := newMockRepo(t)
	now := time.Now().UTC()
	rows := sqlmock.NewRows(columns).
		AddRow("u1", "a@x.com", nil, "Ann", nil, "h", "User", now, now).
		AddRow("a1", "root@x.com", nil, "", "/uploads/r.png", "h", "Admin", now, now)
	mock.ExpectQuery(`SELECT (.+) FROM accounts ORDER BY created_at, id`).WillReturnRows(rows)

	all, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, domain.RoleAdmin, all[1].Role)
	assert.Equal(t, "/uploads/r.png", all[1].ProfileImage)
}

func TestListAll_Empty_NotNil(t *testing.T) {
	t.Parallel()

	repo, mock := newMockRepo(t)
	mock.ExpectQuery(`FROM accounts`).WillReturnRows(sqlmock.NewRows(columns))

	all, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, all)
	assert.Empty(t, all)
}
