// Copyright (c) 2026 Serbbisyo. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/serbbisyo/serbbisyo/internal/platform/apperr"
	"github.com/serbbisyo/serbbisyo/internal/platform/constants"
	"github.com/serbbisyo/serbbisyo/internal/platform/sec"
	"github.com/serbbisyo/serbbisyo/pkg/uuidv7"
)

// # Contracts & Types

// TokenProvider signs and parses session tokens. [*sec.TokenService] satisfies it.
type TokenProvider interface {
	GenerateSessionToken(userID, sessionID string, timeToLive time.Duration) (string, error)
	ParseToken(tokenString string) (*sec.AuthClaims, error)
}

// Service implements account and session use cases.
type Service struct {
	credentials CredentialRepository
	sessions    SessionRepository
	tokens      TokenProvider
	sessionTTL  time.Duration
	now         func() time.Time
}

// NewService constructs a new [Service] with the default session lifetime.
func NewService(credentials CredentialRepository, sessions SessionRepository, tokens TokenProvider) *Service {
	return &Service{
		credentials: credentials,
		sessions:    sessions,
		tokens:      tokens,
		sessionTTL:  constants.SessionTTL,
		now:         time.Now,
	}
}

// NormalizeEmail lower-cases and trims an address so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// # Account Creation

/*
CreateAccount registers a credential and opens a session for it.

Parameters:
  - ctx: context.Context
  - email: string
  - password: string (plain text, validated by the caller)

Returns:
  - *Login: The new user's session
  - error: CONFLICT (email taken) or storage errors
*/
func (service *Service) CreateAccount(ctx context.Context, email, password string) (*Login, error) {
	email = NormalizeEmail(email)

	hashedPassword, err := sec.HashPassword(password)
	if errors.Is(err, sec.ErrPasswordTooLong) {
		return nil, apperr.ValidationError("Validation failed",
			apperr.FieldError{Field: "password", Message: "Must be at most 72 bytes"})
	}
	if err != nil {
		return nil, fmt.Errorf("identity_service_hash_failed: %w", err)
	}

	credential := &Credential{
		UserID:       uuidv7.New(),
		Email:        email,
		PasswordHash: hashedPassword,
		CreatedAt:    service.now().UTC(),
	}

	// The unique index on email is the arbiter; a pre-check would race.
	if err := service.credentials.Create(ctx, credential); err != nil {
		return nil, fmt.Errorf("identity_service_create_failed: %w", err)
	}

	return service.openSession(ctx, credential.UserID)
}

// # Authentication Flow

/*
SignIn checks the credentials and opens a new session.

Parameters:
  - ctx: context.Context
  - email: string
  - password: string

Returns:
  - *Login: Session identifiers and signed token
  - error: UNAUTHORIZED (generic, no enumeration) or internal failures
*/
func (service *Service) SignIn(ctx context.Context, email, password string) (*Login, error) {
	credential, err := service.credentials.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if apperr.IsCode(err, apperr.CodeNotFound) {
			return nil, apperr.Unauthorized("Invalid login credentials")
		}
		return nil, fmt.Errorf("identity_service_lookup_failed: %w", err)
	}

	if !sec.CheckPasswordHash(password, credential.PasswordHash) {
		return nil, apperr.Unauthorized("Invalid login credentials")
	}

	return service.openSession(ctx, credential.UserID)
}

/*
SignOut revokes a session. Revoking an unknown session succeeds.

Parameters:
  - ctx: context.Context
  - sessionID: string

Returns:
  - error: Storage failures
*/
func (service *Service) SignOut(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := service.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("identity_service_signout_failed: %w", err)
	}
	return nil
}

/*
DeleteAccount removes the credential of userID so the email can register again.
Sessions already issued are left to the caller.

Returns:
  - error: Storage failures
*/
func (service *Service) DeleteAccount(ctx context.Context, userID string) error {
	if err := service.credentials.Delete(ctx, userID); err != nil {
		return fmt.Errorf("identity_service_delete_failed: %w", err)
	}
	return nil
}

/*
Verify resolves a session token into claims, provided the session is still live.

Parameters:
  - ctx: context.Context
  - token: string

Returns:
  - *sec.AuthClaims: Verified claims
  - error: AUTH_REQUIRED for bad, expired or revoked tokens; storage errors otherwise
*/
func (service *Service) Verify(ctx context.Context, token string) (*sec.AuthClaims, error) {
	claims, err := service.tokens.ParseToken(token)
	if err != nil {
		return nil, apperr.AuthRequired()
	}
	if !uuidv7.Valid(claims.SessionID) {
		return nil, apperr.AuthRequired()
	}

	owner, err := service.sessions.FindUserID(ctx, claims.SessionID)
	if err != nil {
		return nil, fmt.Errorf("identity_service_verify_failed: %w", err)
	}

	// A session ID lifted into a token for another user is not honoured.
	if owner != claims.UserID {
		return nil, apperr.AuthRequired()
	}

	return claims, nil
}

func (service *Service) openSession(ctx context.Context, userID string) (*Login, error) {
	issuedAt := service.now().UTC()
	session := &Session{
		ID:        uuidv7.New(),
		UserID:    userID,
		CreatedAt: issuedAt,
		ExpiresAt: issuedAt.Add(service.sessionTTL),
	}

	if err := service.sessions.Create(ctx, session, service.sessionTTL); err != nil {
		return nil, fmt.Errorf("identity_service_session_failed: %w", err)
	}

	token, err := service.tokens.GenerateSessionToken(userID, session.ID, service.sessionTTL)
	if err != nil {
		_ = service.sessions.Delete(ctx, session.ID)
		return nil, fmt.Errorf("identity_service_token_failed: %w", err)
	}

	return &Login{
		UserID:    userID,
		SessionID: session.ID,
		Token:     token,
		ExpiresAt: session.ExpiresAt,
	}, nil
}
