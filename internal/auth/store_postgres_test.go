// Copyright (c) 2026 SecureAuth. All rights reserved.

package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adewumi/secureauth/internal/auth"
	"github.com/adewumi/secureauth/internal/platform/apperr"
)

func newRepoFixture(t *testing.T) (*auth.PostgresUserRepository, pgxmock.PgxPoolIface) {
	t.Helper()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	return auth.NewUserRepository(mock), mock
}

func sampleUser() *auth.User {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &auth.User{
		ID:           "0191a2b3-0000-7000-8000-000000000001",
		Name:         "Jane Doe",
		Email:        testEmail,
		Phone:        "0123456789",
		PasswordHash: "$2a$10$abcdefghijklmnopqrstuv",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

/*
TestUserRepository_Create covers the insert path and the duplicate-email
mapping onto Conflict.
*/
func TestUserRepository_Create(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		repo, mock := newRepoFixture(t)
		user := sampleUser()

		mock.ExpectExec("INSERT INTO users").
			WithArgs(user.ID, user.Name, user.Email, user.Phone, user.PasswordHash,
				pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		require.NoError(t, repo.Create(context.Background(), user))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate_email", func(t *testing.T) {
		repo, mock := newRepoFixture(t)
		user := sampleUser()

		mock.ExpectExec("INSERT INTO users").
			WithArgs(user.ID, user.Name, user.Email, user.Phone, user.PasswordHash,
				pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnError(&pgconn.PgError{Code: "23505"})

		err := repo.Create(context.Background(), user)
		require.Error(t, err)

		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, "CONFLICT", ae.Code)
	})
}

/*
TestUserRepository_FindByEmail covers row hydration and the NotFound mapping.
*/
func TestUserRepository_FindByEmail(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		repo, mock := newRepoFixture(t)
		user := sampleUser()

		rows := pgxmock.NewRows([]string{
			"id", "name", "email", "phone", "password_hash", "created_at", "updated_at",
		}).AddRow(
			user.ID, user.Name, user.Email, user.Phone, user.PasswordHash,
			user.CreatedAt, user.UpdatedAt,
		)

		mock.ExpectQuery("SELECT id, name, email").
			WithArgs(testEmail).
			WillReturnRows(rows)

		found, err := repo.FindByEmail(context.Background(), testEmail)
		require.NoError(t, err)
		assert.Equal(t, user.ID, found.ID)
		assert.Equal(t, user.PasswordHash, found.PasswordHash)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not_found", func(t *testing.T) {
		repo, mock := newRepoFixture(t)

		mock.ExpectQuery("SELECT id, name, email").
			WithArgs("ghost@example.com").
			WillReturnError(pgx.ErrNoRows)

		_, err := repo.FindByEmail(context.Background(), "ghost@example.com")
		require.Error(t, err)
		assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
	})
}

/*
TestUserRepository_UpdatePassword covers the hash rotation and the zero-rows
NotFound mapping.
*/
func TestUserRepository_UpdatePassword(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		repo, mock := newRepoFixture(t)

		mock.ExpectExec("UPDATE users").
			WithArgs(testEmail, "new-hash", pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		require.NoError(t, repo.UpdatePassword(context.Background(), testEmail, "new-hash"))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no_live_row", func(t *testing.T) {
		repo, mock := newRepoFixture(t)

		mock.ExpectExec("UPDATE users").
			WithArgs("ghost@example.com", "new-hash", pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err := repo.UpdatePassword(context.Background(), "ghost@example.com", "new-hash")
		require.Error(t, err)
		assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
	})
}

/*
TestUserRepository_SoftDelete verifies the retention-friendly delete.
*/
func TestUserRepository_SoftDelete(t *testing.T) {
	repo, mock := newRepoFixture(t)

	mock.ExpectExec("UPDATE users SET deleted_at").
		WithArgs(testEmail, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, repo.SoftDelete(context.Background(), testEmail))
	require.NoError(t, mock.ExpectationsWereMet())
}
