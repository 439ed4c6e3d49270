// Copyright (c) 2026 Serbbisyo. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package account ties the identity capability to the profile store.

Signing up creates credentials and the profile document together; signing in
looks the profile up to decide where the user lands. Neither identity nor
profile knows about the other; this package is the only place both meet.
*/
package account

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/serbbisyo/serbbisyo/internal/identity"
	"github.com/serbbisyo/serbbisyo/internal/platform/constants"
	"github.com/serbbisyo/serbbisyo/internal/profile"
)

// # Dependencies

// Identity is the auth capability used by the account flows.
type Identity interface {
	CreateAccount(ctx context.Context, email, password string) (*identity.Login, error)
	SignIn(ctx context.Context, email, password string) (*identity.Login, error)
	SignOut(ctx context.Context, sessionID string) error
	DeleteAccount(ctx context.Context, userID string) error
}

// Profiles reads and writes profile documents.
type Profiles interface {
	Create(ctx context.Context, input profile.CreateInput) (*profile.Profile, error)
	Get(ctx context.Context, userID string) (*profile.Profile, error)
}

// # Service Layer

// Service orchestrates signup, sign-in and sign-out.
type Service struct {
	identity Identity
	profiles Profiles
	logger   *slog.Logger
}

// NewService constructs a new [Service].
func NewService(identity Identity, profiles Profiles, logger *slog.Logger) *Service {
	return &Service{identity: identity, profiles: profiles, logger: logger}
}

// SignupInput is a validated signup form.
type SignupInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      profile.Role
}

// Result is a signed-in user and the page they should land on.
type Result struct {
	Login    *identity.Login
	Profile  *profile.Profile
	Redirect string
}

/*
Signup creates the account and its profile document.

When the profile cannot be written the new session is revoked and the
credential deleted, so a failed signup leaves neither a usable login nor a
taken email behind.

Parameters:
  - ctx: context.Context
  - input: SignupInput

Returns:
  - *Result: Session, profile and the index page as redirect
  - error: CONFLICT, INVALID_ROLE or storage errors
*/
func (service *Service) Signup(ctx context.Context, input SignupInput) (*Result, error) {

	// ── 1. Credentials ────────────────────────────────────────────────────
	login, err := service.identity.CreateAccount(ctx, input.Email, input.Password)
	if err != nil {
		return nil, fmt.Errorf("account_service_signup_failed: %w", err)
	}

	// ── 2. Profile Document ───────────────────────────────────────────────
	created, err := service.profiles.Create(ctx, profile.CreateInput{
		UserID:    login.UserID,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Email:     identity.NormalizeEmail(input.Email),
		Role:      input.Role,
	})
	if err != nil {
		service.revoke(ctx, login, "account_signup_profile_failed", err)
		if derr := service.identity.DeleteAccount(ctx, login.UserID); derr != nil {
			service.logger.ErrorContext(ctx, "account_orphan_credential",
				slog.String("user_id", login.UserID),
				slog.Any("error", derr),
			)
		}
		return nil, fmt.Errorf("account_service_signup_failed: %w", err)
	}

	service.logger.InfoContext(ctx, "account_signed_up",
		slog.String("user_id", login.UserID),
		slog.String("role", string(created.Role)),
	)

	return &Result{Login: login, Profile: created, Redirect: constants.PageIndex}, nil
}

/*
Login signs in and resolves the role's dashboard.

An account without a profile cannot be routed; its session is revoked and
the lookup error is returned.

Returns:
  - *Result: Session, profile and the dashboard redirect
  - error: UNAUTHORIZED, PROFILE_NOT_FOUND or storage errors
*/
func (service *Service) Login(ctx context.Context, email, password string) (*Result, error) {
	login, err := service.identity.SignIn(ctx, email, password)
	if err != nil {
		return nil, fmt.Errorf("account_service_login_failed: %w", err)
	}

	found, err := service.profiles.Get(ctx, login.UserID)
	if err != nil {
		service.revoke(ctx, login, "account_login_profile_failed", err)
		return nil, fmt.Errorf("account_service_login_failed: %w", err)
	}

	return &Result{Login: login, Profile: found, Redirect: found.Role.Dashboard()}, nil
}

// Logout revokes sessionID.
func (service *Service) Logout(ctx context.Context, sessionID string) error {
	if err := service.identity.SignOut(ctx, sessionID); err != nil {
		return fmt.Errorf("account_service_logout_failed: %w", err)
	}
	return nil
}

// Me returns the profile of userID.
func (service *Service) Me(ctx context.Context, userID string) (*profile.Profile, error) {
	found, err := service.profiles.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("account_service_me_failed: %w", err)
	}
	return found, nil
}

func (service *Service) revoke(ctx context.Context, login *identity.Login, event string, cause error) {
	service.logger.WarnContext(ctx, event,
		slog.String("user_id", login.UserID),
		slog.Any("error", cause),
	)
	if err := service.identity.SignOut(ctx, login.SessionID); err != nil {
		service.logger.ErrorContext(ctx, "account_session_revoke_failed",
			slog.String("user_id", login.UserID),
			slog.Any("error", err),
		)
	}
}
