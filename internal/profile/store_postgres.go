// Copyright (c) 2026 Serbbisyo. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package profile

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/serbbisyo/serbbisyo/internal/platform/apperr"
	"github.com/serbbisyo/serbbisyo/internal/platform/dberr"
)

// PostgresRepository implements [Repository] on the users.profile table.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL implementation of the Repository.
func NewRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

/*
FindByUserID retrieves the profile document for a user.

Parameters:
  - ctx: context.Context
  - userID: string

Returns:
  - *Profile: Hydrated document
  - error: apperr PROFILE_NOT_FOUND or database errors
*/
func (repository *PostgresRepository) FindByUserID(ctx context.Context, userID string) (*Profile, error) {
	const query = `
		SELECT userid, firstname, lastname, email, role, createdat
		FROM users.profile
		WHERE userid = $1`

	profile := &Profile{}
	err := repository.pool.QueryRow(ctx, query, userID).Scan(
		&profile.UserID,
		&profile.FirstName,
		&profile.LastName,
		&profile.Email,
		&profile.Role,
		&profile.CreatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "postgres_profile_repo_find_failed", apperr.ProfileNotFound())
	}

	return profile, nil
}

/*
Create inserts a new profile document. The userid primary key enforces one
profile per user.

Parameters:
  - ctx: context.Context
  - profile: *Profile

Returns:
  - error: apperr CONFLICT on duplicates or database errors
*/
func (repository *PostgresRepository) Create(ctx context.Context, profile *Profile) error {
	const query = `
		INSERT INTO users.profile (userid, firstname, lastname, email, role, createdat)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := repository.pool.Exec(ctx, query,
		profile.UserID,
		profile.FirstName,
		profile.LastName,
		profile.Email,
		profile.Role,
		profile.CreatedAt,
	)
	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return apperr.Conflict("Profile already exists")
		}
		if dberr.IsForeignKeyViolation(err) {
			return apperr.NotFound("Account")
		}
		return dberr.Wrap(err, "postgres_profile_repo_create_failed", nil)
	}

	return nil
}
