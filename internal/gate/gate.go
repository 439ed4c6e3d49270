// Copyright (c) 2026 Serbbisyo. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package gate guards protected pages.

On every protected page load the gate waits for the session, looks up the
user's role and either lets the page proceed or navigates away.

Flow:

  - Public pages (login, signup, index) are never checked.
  - No session: go to the login page.
  - Session but no readable profile: sign out, then go to the login page.
  - Client on a /provider/ page: go to the client dashboard.
  - Provider on a /client/ page: go to the provider dashboard.

The gate only observes the session; the auth capability owns it. Every
session change delivered to the gate is evaluated, one at a time.
*/
package gate

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/serbbisyo/serbbisyo/internal/platform/apperr"
	"github.com/serbbisyo/serbbisyo/internal/platform/constants"
	"github.com/serbbisyo/serbbisyo/internal/profile"
)

// # Contracts & Types

// Session is the auth capability's view of the current user.
type Session struct {
	UserID          string
	IsAuthenticated bool
}

// Authenticator is the auth capability as seen by the gate.
type Authenticator interface {
	// Subscribe registers onChange and fires it at least once with the
	// current session. It returns a function that cancels the subscription.
	Subscribe(onChange func(Session)) (unsubscribe func())

	// SignOut ends the current session.
	SignOut(ctx context.Context) error
}

// Navigator moves the user to another page.
type Navigator interface {
	Redirect(path string)
}

// ProfileReader fetches profile documents. [*profile.Service] satisfies it.
type ProfileReader interface {
	Get(ctx context.Context, userID string) (*profile.Profile, error)
}

// Recorder counts gate decisions. [*metrics.Collector] satisfies it.
type Recorder interface {
	RecordGateDecision(state, role string)
}

// Page is one page load handed to [Gate.Run].
type Page struct {
	Path      string
	Auth      Authenticator
	Navigator Navigator
}

// Gate evaluates page loads. It is safe for concurrent use; each Run is independent.
type Gate struct {
	profiles ProfileReader
	logger   *slog.Logger
	recorder Recorder
}

// New constructs a [Gate]. recorder may be nil.
func New(profiles ProfileReader, logger *slog.Logger, recorder Recorder) *Gate {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gate{profiles: profiles, logger: logger, recorder: recorder}
}

// # Execution

/*
Run starts guarding a page load.

For public pages it returns immediately without subscribing. Otherwise it
subscribes to session changes and evaluates each firing in order.

Parameters:
  - ctx: context.Context (firings after cancellation are ignored)
  - page: Page

Returns:
  - stop: Cancels the subscription; safe to call more than once
*/
func (gate *Gate) Run(ctx context.Context, page Page) (stop func()) {
	logger := gate.logger.With(slog.String("path", page.Path))

	if IsPublic(page.Path) {
		logger.DebugContext(ctx, "gate_public_page")
		gate.record(StatePublic, "")
		return func() {}
	}

	current := &run{
		gate:   gate,
		page:   page,
		logger: logger,
		state:  StateAwaitingSession,
	}

	unsubscribe := page.Auth.Subscribe(func(session Session) {
		current.evaluate(ctx, session)
	})

	var once sync.Once
	return func() {
		once.Do(func() {
			current.stop()
			if unsubscribe != nil {
				unsubscribe()
			}
		})
	}
}

// run is the state of one page load.
//
// Firings are queued and drained by whichever goroutine delivered the first
// of them. mu guards the queue only; it is never held across a call into the
// profile reader, the auth capability or the navigator, so a collaborator
// may deliver a new firing from inside one of those calls.
type run struct {
	mu       sync.Mutex
	gate     *Gate
	page     Page
	logger   *slog.Logger
	state    State
	stopped  bool
	pending  []Session
	draining bool
}

func (r *run) stop() {
	r.mu.Lock()
	r.stopped = true
	r.mu.Unlock()
}

// evaluate queues one session firing and drains the queue unless another
// call on the stack is already draining it.
func (r *run) evaluate(ctx context.Context, session Session) {
	r.mu.Lock()
	r.pending = append(r.pending, session)
	if r.draining {
		r.mu.Unlock()
		return
	}
	r.draining = true
	r.mu.Unlock()

	for {
		r.mu.Lock()
		if len(r.pending) == 0 || r.stopped || ctx.Err() != nil {
			r.pending = nil
			r.draining = false
			r.mu.Unlock()
			return
		}
		next := r.pending[0]
		r.pending = r.pending[1:]
		r.mu.Unlock()

		r.decide(ctx, next)
	}
}

// decide runs the gate policy for one firing. Only the draining goroutine
// calls it, so decisions never overlap.
func (r *run) decide(ctx context.Context, session Session) {

	// ── 1. Session Presence ───────────────────────────────────────────────
	if !session.IsAuthenticated || session.UserID == "" {
		r.transition(StateLoggedOut, "")
		r.logger.InfoContext(ctx, "gate_session_missing")
		r.page.Navigator.Redirect(constants.PageLogin)
		return
	}

	logger := r.logger.With(slog.String("user_id", session.UserID))
	r.transition(StateRoleChecking, "")

	// ── 2. Profile Lookup (fail-closed) ───────────────────────────────────
	doc, err := r.gate.profiles.Get(ctx, session.UserID)
	if err != nil || doc == nil {
		if err == nil {
			err = apperr.ProfileNotFound()
		}
		if apperr.IsCode(err, string(apperr.KindProfileNotFound)) {
			logger.WarnContext(ctx, "gate_profile_missing")
		} else {
			logger.ErrorContext(ctx, "gate_profile_lookup_failed", slog.Any("error", err))
		}

		if signOutErr := r.page.Auth.SignOut(ctx); signOutErr != nil && !errors.Is(signOutErr, context.Canceled) {
			logger.ErrorContext(ctx, "gate_sign_out_failed", slog.Any("error", signOutErr))
		}

		r.transition(StateFailedLookup, "")
		r.page.Navigator.Redirect(constants.PageLogin)
		return
	}

	role := string(doc.Role)

	// ── 3. Role Routing ───────────────────────────────────────────────────
	if !doc.Role.Valid() {
		logger.WarnContext(ctx, "gate_unknown_role",
			slog.String("role", role),
			slog.String("kind", string(apperr.KindInvalidRole)),
		)
	}

	if target := RouteFor(doc.Role, r.page.Path); target != "" {
		r.transition(StateRedirected, role)
		logger.InfoContext(ctx, "gate_role_redirect", slog.String("role", role), slog.String("target", target))
		r.page.Navigator.Redirect(target)
		return
	}

	r.transition(StateGranted, role)
	logger.InfoContext(ctx, "gate_access_granted", slog.String("role", role))
}

func (r *run) transition(next State, role string) {
	r.mu.Lock()
	r.state = next
	r.mu.Unlock()
	if next.Terminal() {
		r.gate.record(next, role)
	}
}

func (gate *Gate) record(state State, role string) {
	if gate.recorder != nil {
		gate.recorder.RecordGateDecision(state.String(), role)
	}
}
