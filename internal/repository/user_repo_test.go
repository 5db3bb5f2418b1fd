package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/lamatmed/e-rim-api/internal/model"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testUserID = "0f8fad5b-d9cb-469f-a165-70867728950e"

func newMockRepo(t *testing.T) (pgxmock.PgxPoolIface, UserRepository) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock, NewUserRepository(mock)
}

func userRows(u *model.User) *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "name", "phone", "password_hash", "address", "profile_image",
		"role", "blocked", "created_at", "updated_at",
	}).AddRow(
		u.ID, u.Name, u.Phone, u.PasswordHash, u.Address, u.ProfileImage,
		u.Role, u.Blocked, u.CreatedAt, u.UpdatedAt,
	)
}

func TestUserRepository_Create(t *testing.T) {
	mock, repo := newMockRepo(t)
	now := time.Now()

	user := &model.User{
		ID:           testUserID,
		Name:         "A",
		Phone:        "+1000",
		PasswordHash: "hash",
		Role:         model.RoleUser,
	}

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs(user.ID, user.Name, user.Phone, user.PasswordHash,
			user.Address, user.ProfileImage, user.Role, user.Blocked).
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	err := repo.Create(context.Background(), user)

	assert.NoError(t, err)
	assert.Equal(t, now, user.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Create_DuplicatePhone(t *testing.T) {
	mock, repo := newMockRepo(t)

	user := &model.User{ID: testUserID, Name: "A", Phone: "+1000", PasswordHash: "hash", Role: model.RoleUser}

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs(user.ID, user.Name, user.Phone, user.PasswordHash,
			user.Address, user.ProfileImage, user.Role, user.Blocked).
		WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "users_phone_key"})

	err := repo.Create(context.Background(), user)

	assert.ErrorIs(t, err, ErrDuplicatePhone)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_FindByID(t *testing.T) {
	mock, repo := newMockRepo(t)
	now := time.Now()

	want := &model.User{
		ID: testUserID, Name: "A", Phone: "+1000", PasswordHash: "hash",
		Role: model.RoleUser, CreatedAt: now, UpdatedAt: now,
	}

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = $1")).
		WithArgs(testUserID).
		WillReturnRows(userRows(want))

	got, err := repo.FindByID(context.Background(), testUserID)

	assert.NoError(t, err)
	assert.Equal(t, want, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_FindByID_NotFound(t *testing.T) {
	mock, repo := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = $1")).
		WithArgs(testUserID).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "name", "phone", "password_hash", "address", "profile_image",
			"role", "blocked", "created_at", "updated_at",
		}))

	got, err := repo.FindByID(context.Background(), testUserID)

	assert.NoError(t, err)
	assert.Nil(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_FindByPhone(t *testing.T) {
	mock, repo := newMockRepo(t)
	now := time.Now()

	want := &model.User{
		ID: testUserID, Name: "A", Phone: "+1000", PasswordHash: "hash",
		Role: model.RoleAdmin, Blocked: true, CreatedAt: now, UpdatedAt: now,
	}

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE phone = $1")).
		WithArgs("+1000").
		WillReturnRows(userRows(want))

	got, err := repo.FindByPhone(context.Background(), "+1000")

	assert.NoError(t, err)
	assert.Equal(t, want, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_FindAll(t *testing.T) {
	mock, repo := newMockRepo(t)
	now := time.Now()

	rows := pgxmock.NewRows([]string{
		"id", "name", "phone", "password_hash", "address", "profile_image",
		"role", "blocked", "created_at", "updated_at",
	}).
		AddRow(testUserID, "A", "+1000", "hash", nil, nil, model.RoleUser, false, now, now).
		AddRow("7c9e6679-7425-40de-944b-e07fc1f90ae7", "B", "+1001", "hash2", nil, nil, model.RoleAdmin, false, now, now)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users ORDER BY created_at ASC")).
		WillReturnRows(rows)

	users, err := repo.FindAll(context.Background())

	assert.NoError(t, err)
	assert.Len(t, users, 2)
	assert.Equal(t, "+1000", users[0].Phone)
	assert.Equal(t, model.RoleAdmin, users[1].Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Update(t *testing.T) {
	mock, repo := newMockRepo(t)
	now := time.Now()

	user := &model.User{ID: testUserID, Name: "A2", Role: model.RoleUser, Blocked: true}

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE users SET")).
		WithArgs(user.Name, user.Address, user.ProfileImage, user.Role, user.Blocked, user.ID).
		WillReturnRows(pgxmock.NewRows([]string{"updated_at"}).AddRow(now))

	err := repo.Update(context.Background(), user)

	assert.NoError(t, err)
	assert.Equal(t, now, user.UpdatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Update_NotFound(t *testing.T) {
	mock, repo := newMockRepo(t)

	user := &model.User{ID: testUserID, Name: "A2", Role: model.RoleUser}

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE users SET")).
		WithArgs(user.Name, user.Address, user.ProfileImage, user.Role, user.Blocked, user.ID).
		WillReturnRows(pgxmock.NewRows([]string{"updated_at"}))

	err := repo.Update(context.Background(), user)

	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Delete(t *testing.T) {
	mock, repo := newMockRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM users WHERE id = $1")).
		WithArgs(testUserID).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	err := repo.Delete(context.Background(), testUserID)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Delete_NotFound(t *testing.T) {
	mock, repo := newMockRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM users WHERE id = $1")).
		WithArgs(testUserID).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := repo.Delete(context.Background(), testUserID)

	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_FindByID_QueryError(t *testing.T) {
	mock, repo := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = $1")).
		WithArgs(testUserID).
		WillReturnError(errors.New("connection refused"))

	got, err := repo.FindByID(context.Background(), testUserID)

	assert.Error(t, err)
	assert.Nil(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}
