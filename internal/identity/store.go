// Copyright (c) 2026 Serbbisyo. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package identity

import (
	"context"
	"time"
)

// # Credential Data Access

// CredentialRepository defines the data access contract for account credentials.
type CredentialRepository interface {

	/*
		FindByEmail returns the credential registered under email.

		Parameters:
		  - ctx: context.Context
		  - email: string (normalised, lower case)

		Returns:
		  - *Credential: Hydrated entity
		  - error: apperr NOT_FOUND, or retrieval failures
	*/
	FindByEmail(ctx context.Context, email string) (*Credential, error)

	/*
		Create persists a new credential.

		Parameters:
		  - ctx: context.Context
		  - credential: *Credential

		Returns:
		  - error: apperr CONFLICT when the email is taken, or persistence failures
	*/
	Create(ctx context.Context, credential *Credential) error

	/*
		Delete removes the credential of userID. Deleting an unknown user is not an error.

		Parameters:
		  - ctx: context.Context
		  - userID: string

		Returns:
		  - error: Execution failures
	*/
	Delete(ctx context.Context, userID string) error
}

// # Session Data Access

// SessionRepository defines the contract for volatile session storage.
type SessionRepository interface {

	/*
		Create stores a session that expires after ttl.

		Parameters:
		  - ctx: context.Context
		  - session: *Session
		  - ttl: time.Duration

		Returns:
		  - error: Persistence failures
	*/
	Create(ctx context.Context, session *Session, ttl time.Duration) error

	/*
		FindUserID returns the owner of a live session.

		Parameters:
		  - ctx: context.Context
		  - sessionID: string

		Returns:
		  - string: UserID
		  - error: apperr AUTH_REQUIRED when absent or expired, or connectivity errors
	*/
	FindUserID(ctx context.Context, sessionID string) (string, error)

	/*
		Delete revokes a session. Deleting an unknown session is not an error.

		Parameters:
		  - ctx: context.Context
		  - sessionID: string

		Returns:
		  - error: Execution failures
	*/
	Delete(ctx context.Context, sessionID string) error
}
