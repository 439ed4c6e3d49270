// Copyright (c) 2026 Serbbisyo. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package profile

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/serbbisyo/serbbisyo/internal/platform/apperr"
)

// Service implements the profile use cases.
type Service struct {
	repository Repository
	now        func() time.Time
}

// NewService constructs a new [Service].
func NewService(repository Repository) *Service {
	return &Service{repository: repository, now: time.Now}
}

// CreateInput holds the fields written when an account is created.
type CreateInput struct {
	UserID    string
	FirstName string
	LastName  string
	Email     string
	// Role may be empty, in which case [DefaultRole] is used.
	Role Role
}

/*
Create writes the profile document for a new account.

The creation timestamp is taken from the server clock, never from the client.

Parameters:
  - ctx: context.Context
  - input: CreateInput

Returns:
  - *Profile: The stored document
  - error: INVALID_ROLE, CONFLICT (profile exists) or storage errors
*/
func (service *Service) Create(ctx context.Context, input CreateInput) (*Profile, error) {
	role := input.Role
	if role == "" {
		role = DefaultRole
	}
	if !role.Valid() {
		return nil, apperr.InvalidRole(string(role))
	}

	profile := &Profile{
		UserID:    input.UserID,
		FirstName: strings.TrimSpace(input.FirstName),
		LastName:  strings.TrimSpace(input.LastName),
		Email:     strings.TrimSpace(input.Email),
		Role:      role,
		CreatedAt: service.now().UTC(),
	}

	if err := service.repository.Create(ctx, profile); err != nil {
		return nil, fmt.Errorf("profile_service_create_failed: %w", err)
	}

	return profile, nil
}

/*
Get returns the profile for userID.

Returns:
  - *Profile: Hydrated document
  - error: PROFILE_NOT_FOUND or storage errors
*/
func (service *Service) Get(ctx context.Context, userID string) (*Profile, error) {
	profile, err := service.repository.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("profile_service_get_failed: %w", err)
	}
	return profile, nil
}
