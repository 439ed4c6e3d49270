// Copyright (c) 2026 Serbbisyo. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package identity

import (
	"context"
	"net/http"

	"github.com/serbbisyo/serbbisyo/internal/gate"
	"github.com/serbbisyo/serbbisyo/internal/platform/middleware"
	"github.com/serbbisyo/serbbisyo/internal/platform/sec"
)

// SessionRevoker ends server-side sessions. [*Service] satisfies it.
type SessionRevoker interface {
	SignOut(ctx context.Context, sessionID string) error
}

// Subscription adapts one HTTP request to [gate.Authenticator].
//
// The session is whatever [middleware.Authenticate] verified for the request.
// A request carries a single session state, so Subscribe fires exactly once,
// synchronously, and there is nothing to unsubscribe from.
type Subscription struct {
	revoker SessionRevoker
	claims  *sec.AuthClaims
	writer  http.ResponseWriter
	secure  bool
}

// NewSubscription reads the verified claims from the request context.
func NewSubscription(revoker SessionRevoker, writer http.ResponseWriter, request *http.Request, secureCookie bool) *Subscription {
	return &Subscription{
		revoker: revoker,
		claims:  middleware.GetUser(request.Context()),
		writer:  writer,
		secure:  secureCookie,
	}
}

// Subscribe delivers the request's session to onChange.
func (subscription *Subscription) Subscribe(onChange func(gate.Session)) func() {
	if subscription.claims == nil {
		onChange(gate.Session{})
	} else {
		onChange(gate.Session{UserID: subscription.claims.UserID, IsAuthenticated: true})
	}
	return func() {}
}

// SignOut revokes the request's session and clears its cookie. The cookie is
// cleared even when revocation fails.
func (subscription *Subscription) SignOut(ctx context.Context) error {
	ClearSessionCookie(subscription.writer, subscription.secure)

	if subscription.claims == nil {
		return nil
	}
	return subscription.revoker.SignOut(ctx, subscription.claims.SessionID)
}

// Authenticators returns a [gate.AuthenticatorFactory] backed by revoker.
func Authenticators(revoker SessionRevoker, secureCookie bool) gate.AuthenticatorFactory {
	return func(writer http.ResponseWriter, request *http.Request) gate.Authenticator {
		return NewSubscription(revoker, writer, request, secureCookie)
	}
}
