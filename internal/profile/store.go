// Copyright (c) 2026 Serbbisyo. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package profile

import "context"

// # Profile Data Access

// Repository defines the data access contract for profile documents.
type Repository interface {

	/*
		FindByUserID returns the profile keyed by userID.

		Parameters:
		  - ctx: context.Context
		  - userID: string

		Returns:
		  - *Profile: Hydrated document
		  - error: apperr PROFILE_NOT_FOUND, or retrieval failures
	*/
	FindByUserID(ctx context.Context, userID string) (*Profile, error)

	/*
		Create persists a brand-new profile document.

		Parameters:
		  - ctx: context.Context
		  - profile: *Profile

		Returns:
		  - error: apperr CONFLICT when the user already has a profile, or persistence failures
	*/
	Create(ctx context.Context, profile *Profile) error
}
