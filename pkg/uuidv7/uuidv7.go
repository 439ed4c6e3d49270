// Copyright (c) 2026 Serbbisyo. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package uuidv7 wraps google/uuid to generate time-ordered UUIDv7 values.
//
// User IDs and session IDs are UUIDv7 so that rows in auth.credential sort by
// creation time and session keys are unguessable.
package uuidv7

import "github.com/google/uuid"

// New generates a new UUIDv7 string.
//
// # Safety
//
// It panics only if the OS random source is unavailable.
func New() string {
	id, err := uuid.NewV7()
	if err != nil {
		panic("uuidv7: failed to generate UUID: " + err.Error())
	}

	return id.String()
}

// Valid reports whether s parses as a UUID. Session IDs read back from a
// token are checked with it before touching Redis.
func Valid(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
