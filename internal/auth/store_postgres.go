// Copyright (c) 2026 SecureAuth. All rights reserved.

// PostgreSQL implementation of the account storage layer.
//
// # Architecture
//
// Repositories here are strictly separated from domain logic. They implement
// the domain-defined [UserRepository] interface using the [pgxpool.Pool]
// connection manager.
//
// # Error Mapping
//
// Storage-specific errors (like pgx.ErrNoRows) are mapped to domain-friendly
// [apperr.AppError] types to avoid leaking storage implementation details.

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/adewumi/secureauth/internal/platform/apperr"
	"github.com/adewumi/secureauth/internal/platform/dberr"
)

// # User Repository

// Querier is the subset of [pgxpool.Pool] the repository needs. Declared as
// an interface so tests can substitute pgxmock.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresUserRepository implements the UserRepository interface using pgx.
type PostgresUserRepository struct {
	pool Querier
}

// NewUserRepository creates a new PostgreSQL implementation of the UserRepository.
func NewUserRepository(pool Querier) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

/*
Create persists a new user record into the users table.

Description: Initializes timestamps if not provided. A duplicate email among
non-deleted rows violates the partial unique index and surfaces as Conflict.

Parameters:
  - context: context.Context
  - user: *User (Entity to persist)

Returns:
  - error: apperr.Conflict on duplicate email, or connectivity errors
*/
func (repository *PostgresUserRepository) Create(context context.Context, user *User) error {
	const query = `
		INSERT INTO users (
			id, name, email, phone, password_hash, created_at, updated_at
		) VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7)`

	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	_, err := repository.pool.Exec(context, query,
		user.ID,
		user.Name,
		user.Email,
		user.Phone,
		user.PasswordHash,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return apperr.Conflict("Email is already registered")
		}
		return fmt.Errorf("postgres_user_repo_create_failed: %w", err)
	}

	return nil
}

/*
FindByEmail retrieves a user record by their unique email address.

Description: Performs a lookup on the users table, filtering out soft-deleted rows.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - *User: Hydrated account entity
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresUserRepository) FindByEmail(context context.Context, email string) (*User, error) {
	const query = `
		SELECT id, name, email, COALESCE(phone, ''), password_hash, created_at, updated_at
		FROM users
		WHERE email = $1 AND deleted_at IS NULL`

	user := &User{}
	err := repository.pool.QueryRow(context, query, email).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.Phone,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User not found with this email")
		}
		return nil, fmt.Errorf("postgres_user_repo_find_by_email_failed: %w", err)
	}

	return user, nil
}

/*
UpdatePassword updates only the credential hash for a specific account.

Parameters:
  - context: context.Context
  - email: string
  - newHash: string

Returns:
  - error: apperr.NotFound if no live row matched, or execution errors
*/
func (repository *PostgresUserRepository) UpdatePassword(context context.Context, email, newHash string) error {
	const query = `
		UPDATE users
		SET password_hash = $2, updated_at = $3
		WHERE email = $1 AND deleted_at IS NULL`

	tag, err := repository.pool.Exec(context, query, email, newHash, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_user_repo_update_password_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("User not found with this email")
	}

	return nil
}

/*
SoftDelete marks a user account as deleted using their email.

Description: Retention-friendly deletion by setting deleted_at. The row stops
matching every authentication lookup immediately.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - error: Side-effect failures
*/
func (repository *PostgresUserRepository) SoftDelete(context context.Context, email string) error {
	const query = "UPDATE users SET deleted_at = $2 WHERE email = $1 AND deleted_at IS NULL"
	_, err := repository.pool.Exec(context, query, email, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_user_repo_soft_delete_failed: %w", err)
	}
	return nil
}
