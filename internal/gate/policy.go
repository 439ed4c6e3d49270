// Copyright (c) 2026 Serbbisyo. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package gate

import (
	"strings"

	"github.com/serbbisyo/serbbisyo/internal/platform/constants"
	"github.com/serbbisyo/serbbisyo/internal/profile"
)

// # Public Pages

var publicPages = map[string]struct{}{
	constants.PageLogin:  {},
	constants.PageSignup: {},
	constants.PageIndex:  {},
}

// IsPublic reports whether path is on the public allow-list. The match is exact.
func IsPublic(path string) bool {
	_, ok := publicPages[path]
	return ok
}

// # Role Routing

const (
	clientNamespace   = "/client/"
	providerNamespace = "/provider/"
)

// RouteFor applies the role routing table to path.
//
// It returns the page the user must be sent to, or "" when the user may stay.
// Unknown roles are never redirected.
func RouteFor(role profile.Role, path string) string {
	target := ""

	if role == profile.RoleClient && strings.Contains(path, providerNamespace) {
		target = constants.PageClientDashboard
	}
	if role == profile.RoleProvider && strings.Contains(path, clientNamespace) {
		target = constants.PageProviderDashboard
	}

	return target
}
