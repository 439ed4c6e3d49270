// Copyright (c) 2026 Serbbisyo. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package requestutil reads account form bodies and the caller's session
// from incoming requests.
package requestutil

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/serbbisyo/serbbisyo/internal/platform/apperr"
	"github.com/serbbisyo/serbbisyo/internal/platform/ctxutil"
	"github.com/serbbisyo/serbbisyo/internal/platform/sec"
	"github.com/serbbisyo/serbbisyo/internal/platform/validate"
)

// maxBodyBytes bounds account form bodies; they hold a handful of short fields.
const maxBodyBytes = 64 << 10

/*
DecodeJSON decodes exactly one JSON value from the request body into target.

Returns:
  - error: validate.ErrInvalidJSON for malformed, oversized or trailing input
*/
func DecodeJSON(request *http.Request, target any) error {
	decoder := json.NewDecoder(io.LimitReader(request.Body, maxBodyBytes))
	if err := decoder.Decode(target); err != nil {
		return validate.ErrInvalidJSON
	}
	if _, err := decoder.Token(); !errors.Is(err, io.EOF) {
		return validate.ErrInvalidJSON
	}
	return nil
}

// RequiredClaims returns the verified session claims, or AUTH_REQUIRED.
func RequiredClaims(request *http.Request) (*sec.AuthClaims, error) {
	claims := ctxutil.GetAuthUser(request.Context())
	if claims == nil {
		return nil, apperr.AuthRequired()
	}
	return claims, nil
}

// RequiredUserID returns the signed-in user's ID, or AUTH_REQUIRED.
func RequiredUserID(request *http.Request) (string, error) {
	claims, err := RequiredClaims(request)
	if err != nil {
		return "", err
	}
	return claims.UserID, nil
}
