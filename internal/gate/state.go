// Copyright (c) 2026 Serbbisyo. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package gate

// State is the position of a page load in the gate's state machine.
//
//	Unchecked       -> Public | AwaitingSession
//	AwaitingSession -> LoggedOut | RoleChecking
//	RoleChecking    -> Granted | Redirected | FailedLookup
//
// A later session firing may move a finished run back through RoleChecking.
type State int

const (
	StateUnchecked State = iota
	StatePublic
	StateAwaitingSession
	StateLoggedOut
	StateRoleChecking
	StateGranted
	StateRedirected
	StateFailedLookup
)

var stateNames = [...]string{
	StateUnchecked:       "unchecked",
	StatePublic:          "public",
	StateAwaitingSession: "awaiting_session",
	StateLoggedOut:       "logged_out",
	StateRoleChecking:    "role_checking",
	StateGranted:         "granted",
	StateRedirected:      "redirected",
	StateFailedLookup:    "failed_lookup",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Terminal reports whether the state ends the evaluation of a firing.
func (s State) Terminal() bool {
	switch s {
	case StatePublic, StateLoggedOut, StateGranted, StateRedirected, StateFailedLookup:
		return true
	}
	return false
}
