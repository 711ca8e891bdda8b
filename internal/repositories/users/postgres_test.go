package users

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/inkpost/backend/internal/common"
	"github.com/inkpost/backend/internal/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func userRows(u *models.User) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "email", "username", "password_hash", "role", "is_active",
		"last_login_at", "created_at", "updated_at",
	}).AddRow(
		u.ID, u.Email, u.Username, u.PasswordHash, u.Role, u.IsActive,
		u.LastLoginAt, u.CreatedAt, u.UpdatedAt,
	)
}

func sampleUser() *models.User {
	now := time.Now()
	return &models.User{
		ID:           uuid.New(),
		Email:        "reader@example.com",
		Username:     "reader",
		PasswordHash: "$2a$12$hash",
		Role:         "user",
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	id := uuid.New()
	now := time.Now()
	q := `(?s)^\s*INSERT\s+INTO\s+users\b.*RETURNING\s+id,\s*created_at,\s*updated_at\s*$`
	mock.ExpectQuery(q).
		WithArgs("reader@example.com", "reader", "$2a$12$hash", "user", true).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(id, now, now))

	in := &models.User{
		Email:        "reader@example.com",
		Username:     "reader",
		PasswordHash: "$2a$12$hash",
		Role:         "user",
		IsActive:     true,
	}
	out, err := repo.Create(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.ID != id {
		t.Fatalf("expected generated id %s, got %s", id, out.ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreate_UniqueViolations(t *testing.T) {
	tests := []struct {
		name       string
		constraint string
		want       error
	}{
		{"email taken", "users_email_key", common.ErrEmailTaken},
		{"username taken", "users_username_key", common.ErrUsernameTaken},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			repo, mock, db := newRepoWithMock(t)
			defer db.Close()

			pgErr := &pgconn.PgError{Code: "23505", ConstraintName: tc.constraint}
			mock.ExpectQuery(`INSERT\s+INTO\s+users`).WillReturnError(pgErr)

			_, err := repo.Create(context.Background(), sampleUser())
			if !errors.Is(err, tc.want) {
				t.Fatalf("want %v, got %v", tc.want, err)
			}
		})
	}
}

func TestFindByEmail_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	u := sampleUser()
	mock.ExpectQuery(`SELECT\s+.*\s+FROM\s+users\s+WHERE\s+email\s*=\s*\$1`).
		WithArgs(u.Email).
		WillReturnRows(userRows(u))

	got, err := repo.FindByEmail(context.Background(), u.Email)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != u.ID || got.Username != u.Username || !got.IsActive {
		t.Fatalf("unexpected row: %+v", got)
	}
}

func TestFindByEmail_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT\s+.*\s+FROM\s+users\s+WHERE\s+email\s*=\s*\$1`).
		WithArgs("missing@example.com").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByEmail(context.Background(), "missing@example.com")
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("want common.ErrNotFound, got %v", err)
	}
}

func TestFindByUsername_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	u := sampleUser()
	mock.ExpectQuery(`SELECT\s+.*\s+FROM\s+users\s+WHERE\s+username\s*=\s*\$1`).
		WithArgs(u.Username).
		WillReturnRows(userRows(u))

	got, err := repo.FindByUsername(context.Background(), u.Username)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Email != u.Email {
		t.Fatalf("unexpected row: %+v", got)
	}
}

func TestFindByID_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT\s+.*\s+FROM\s+users\s+WHERE\s+id\s*=\s*\$1`).
		WillReturnError(errors.New("db down"))

	_, err := repo.FindByID(context.Background(), uuid.New())
	if err == nil || errors.Is(err, common.ErrNotFound) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestUpdateLastLogin_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	id := uuid.New()
	mock.ExpectExec(`UPDATE\s+users\s+SET\s+last_login_at\s*=\s*\$2`).
		WithArgs(id, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.UpdateLastLogin(context.Background(), id, time.Now()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestUpdatePasswordHash_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`UPDATE\s+users\s+SET\s+password_hash\s*=\s*\$2`).
		WithArgs(sqlmock.AnyArg(), "$2a$12$new").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdatePasswordHash(context.Background(), uuid.New(), "$2a$12$new")
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("want common.ErrNotFound, got %v", err)
	}
}
