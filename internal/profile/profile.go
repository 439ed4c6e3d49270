// Copyright (c) 2026 Serbbisyo. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package profile owns the user profile document.

Exactly one profile exists per user ID. It is written once when the account
is created and never updated afterwards; in particular the role is immutable.
The session gate only reads it.
*/
package profile

import (
	"time"

	"github.com/serbbisyo/serbbisyo/internal/platform/constants"
)

// # Roles

// Role determines which dashboard and path namespace a user may access.
type Role string

const (
	// RoleClient posts bookings and hires providers.
	RoleClient Role = "client"

	// RoleProvider applies to bookings and delivers services.
	RoleProvider Role = "provider"
)

// DefaultRole is assigned when signup does not pick one.
const DefaultRole = RoleClient

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleClient || r == RoleProvider
}

// Dashboard returns the landing page for the role. Unknown roles land on the index page.
func (r Role) Dashboard() string {
	switch r {
	case RoleClient:
		return constants.PageClientDashboard
	case RoleProvider:
		return constants.PageProviderDashboard
	default:
		return constants.PageIndex
	}
}

// # Domain Entities

// Profile is the document stored per user.
type Profile struct {
	UserID    string    `json:"userId"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// # Field Identifiers

const (
	FieldFirstName = "firstName"
	FieldLastName  = "lastName"
	FieldEmail     = "email"
	FieldRole      = "role"
)
