// Copyright (c) 2026 Serbbisyo. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package identity implements the authentication capability of the marketplace.

It owns credentials and sessions. It knows nothing about roles or profiles.

Architecture:

  - Credentials: email + bcrypt hash in PostgreSQL (auth.credential).
  - Sessions: one Redis key per session ID with a 30-day TTL.
  - Tokens: RS256 JWTs carrying the user ID and the session ID.

A token is only honoured while its session key still exists, so signing out
revokes it immediately even though the JWT itself has not expired.
*/
package identity

import "time"

// # Domain Entities

// Credential is the sign-in secret of one account.
type Credential struct {
	UserID       string    `json:"userId"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Session is a revocable server-side login.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Login is the result of a successful sign-in or account creation.
type Login struct {
	UserID    string
	SessionID string
	Token     string
	ExpiresAt time.Time
}

// # Field Identifiers

const (
	FieldEmail           = "email"
	FieldPassword        = "password"
	FieldConfirmPassword = "confirmPassword"
)
