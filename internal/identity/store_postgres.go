// Copyright (c) 2026 Serbbisyo. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package identity

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/serbbisyo/serbbisyo/internal/platform/apperr"
	"github.com/serbbisyo/serbbisyo/internal/platform/dberr"
)

// PostgresCredentialRepository implements [CredentialRepository] using pgx.
type PostgresCredentialRepository struct {
	pool *pgxpool.Pool
}

// NewCredentialRepository creates a new PostgreSQL implementation of the CredentialRepository.
func NewCredentialRepository(pool *pgxpool.Pool) *PostgresCredentialRepository {
	return &PostgresCredentialRepository{pool: pool}
}

/*
FindByEmail looks a credential up by its unique email.

Parameters:
  - ctx: context.Context
  - email: string

Returns:
  - *Credential: Hydrated entity
  - error: apperr NOT_FOUND or database errors
*/
func (repository *PostgresCredentialRepository) FindByEmail(ctx context.Context, email string) (*Credential, error) {
	const query = `
		SELECT userid, email, passwordhash, createdat
		FROM auth.credential
		WHERE email = $1`

	credential := &Credential{}
	err := repository.pool.QueryRow(ctx, query, email).Scan(
		&credential.UserID,
		&credential.Email,
		&credential.PasswordHash,
		&credential.CreatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "postgres_credential_repo_find_failed", apperr.NotFound("Account"))
	}

	return credential, nil
}

/*
Create inserts a new credential row.

Parameters:
  - ctx: context.Context
  - credential: *Credential

Returns:
  - error: apperr CONFLICT on a taken email or database errors
*/
func (repository *PostgresCredentialRepository) Create(ctx context.Context, credential *Credential) error {
	const query = `
		INSERT INTO auth.credential (userid, email, passwordhash, createdat)
		VALUES ($1, $2, $3, $4)`

	_, err := repository.pool.Exec(ctx, query,
		credential.UserID,
		credential.Email,
		credential.PasswordHash,
		credential.CreatedAt,
	)
	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return apperr.Conflict("Email is already registered")
		}
		return dberr.Wrap(err, "postgres_credential_repo_create_failed", nil)
	}

	return nil
}

// Delete removes the credential row of userID.
func (repository *PostgresCredentialRepository) Delete(ctx context.Context, userID string) error {
	const query = `DELETE FROM auth.credential WHERE userid = $1`

	if _, err := repository.pool.Exec(ctx, query, userID); err != nil {
		return dberr.Wrap(err, "postgres_credential_repo_delete_failed", nil)
	}
	return nil
}
