// Copyright (c) 2026 Serbbisyo. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package gate

import (
	"net/http"
	"sync"
)

// AuthenticatorFactory builds the [Authenticator] for a single request.
type AuthenticatorFactory func(writer http.ResponseWriter, request *http.Request) Authenticator

// Middleware runs the gate in front of every page served by next.
//
// # Flow
//  1. Run the gate for the request path with a per-request authenticator.
//  2. Stop the run once the synchronous firing has been evaluated.
//  3. If the gate navigated, answer 303 See Other to the last target.
//  4. Otherwise serve the page.
func Middleware(gate *Gate, authenticators AuthenticatorFactory) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			navigator := &RedirectRecorder{}

			stop := gate.Run(request.Context(), Page{
				Path:      request.URL.Path,
				Auth:      authenticators(writer, request),
				Navigator: navigator,
			})
			stop()

			if target := navigator.Last(); target != "" {
				http.Redirect(writer, request, target, http.StatusSeeOther)
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}

// RedirectRecorder is a [Navigator] that remembers every requested target.
type RedirectRecorder struct {
	mu      sync.Mutex
	targets []string
}

// Redirect records path.
func (recorder *RedirectRecorder) Redirect(path string) {
	recorder.mu.Lock()
	defer recorder.mu.Unlock()
	recorder.targets = append(recorder.targets, path)
}

// Targets returns the recorded targets in order.
func (recorder *RedirectRecorder) Targets() []string {
	recorder.mu.Lock()
	defer recorder.mu.Unlock()
	return append([]string(nil), recorder.targets...)
}

// Last returns the most recent target, or "".
func (recorder *RedirectRecorder) Last() string {
	recorder.mu.Lock()
	defer recorder.mu.Unlock()
	if len(recorder.targets) == 0 {
		return ""
	}
	return recorder.targets[len(recorder.targets)-1]
}
