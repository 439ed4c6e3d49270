// Copyright (c) 2026 Serbbisyo. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/serbbisyo/serbbisyo/internal/platform/apperr"
	"github.com/serbbisyo/serbbisyo/internal/platform/constants"
	"github.com/serbbisyo/serbbisyo/internal/platform/ctxutil"
	"github.com/serbbisyo/serbbisyo/internal/platform/respond"
	"github.com/serbbisyo/serbbisyo/internal/platform/sec"
)

// SessionVerifier resolves a session token into the claims of a live
// session. The identity service implements it.
type SessionVerifier interface {
	Verify(ctx context.Context, token string) (*sec.AuthClaims, error)
}

// Authenticate attaches the claims of the request's session, if any.
//
// It never rejects. A missing, forged or revoked token leaves the request
// anonymous, so pages still reach the session gate and API routes still
// reach [RequireAuth].
func Authenticate(verifier SessionVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			token := SessionToken(request)

			// ── 1. Anonymous Access ───────────────────────────────────────────
			if token == "" {
				next.ServeHTTP(writer, request)
				return
			}

			// ── 2. Session Verification ───────────────────────────────────────
			claims, err := verifier.Verify(request.Context(), token)
			if err != nil {
				ctxutil.GetLogger(request.Context()).DebugContext(request.Context(), "session_token_rejected")
				next.ServeHTTP(writer, request)
				return
			}

			// ── 3. Context Injection ──────────────────────────────────────────
			ctx := ctxutil.WithAuthUser(request.Context(), claims)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// RequireAuth answers 401 AUTH_REQUIRED for anonymous API calls. It relies
// on [Authenticate] running earlier in the chain.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if GetUser(request.Context()) == nil {
			respond.Error(writer, request, apperr.AuthRequired())
			return
		}
		next.ServeHTTP(writer, request)
	})
}

// GetUser returns the session claims, or nil for an anonymous request.
func GetUser(ctx context.Context) *sec.AuthClaims {
	return ctxutil.GetAuthUser(ctx)
}

// SessionToken extracts the raw session token from the cookie or the
// Authorization header. It returns "" when neither is present or the header
// is malformed.
func SessionToken(request *http.Request) string {
	if cookie, err := request.Cookie(constants.SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	parts := strings.Fields(request.Header.Get("Authorization"))
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return parts[1]
	}
	return ""
}
