// Copyright (c) 2026 Serbbisyo. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package dberr classifies pgx errors into [apperr.AppError] values so that
// repositories never leak SQL details to a response.
package dberr

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/serbbisyo/serbbisyo/internal/platform/apperr"
)

// SQLSTATE codes the repositories react to.
const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

// ErrNotFound is the fallback for a missing row when the caller names no resource.
var ErrNotFound = apperr.NotFound("Resource")

/*
Wrap classifies err from a query run on behalf of action.

  - pgx.ErrNoRows becomes notFound, or ErrNotFound when notFound is nil.
  - A unique violation becomes a 409 CONFLICT.
  - Anything else becomes a 500 whose cause names action.
*/
func Wrap(err error, action string, notFound *apperr.AppError) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, pgx.ErrNoRows):
		if notFound == nil {
			return ErrNotFound
		}
		return notFound
	case IsUniqueViolation(err):
		conflict := apperr.Conflict("Record already exists")
		conflict.Cause = err
		return conflict
	default:
		return apperr.Internal(fmt.Errorf("%s: %w", action, err))
	}
}

// IsUniqueViolation reports whether err is a unique constraint failure.
func IsUniqueViolation(err error) bool {
	return hasState(err, uniqueViolation)
}

// IsForeignKeyViolation reports whether err references a missing parent row,
// such as a profile inserted for a credential that no longer exists.
func IsForeignKeyViolation(err error) bool {
	return hasState(err, foreignKeyViolation)
}

func hasState(err error, state string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == state
}
