// Copyright (c) 2026 Serbbisyo. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package apiclient

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/serbbisyo/serbbisyo/internal/notify"
)

// Connectivity reports whether the network is believed reachable.
type Connectivity interface {
	Online() bool
}

// ConnectivityFunc adapts a plain function to [Connectivity].
type ConnectivityFunc func() bool

// Online implements [Connectivity].
func (f ConnectivityFunc) Online() bool { return f() }

// AlwaysOnline never short-circuits a request.
var AlwaysOnline Connectivity = ConnectivityFunc(func() bool { return true })

// Monitor is a [Connectivity] whose state is pushed by the host (browser
// online/offline events, a health probe). Each change emits one notification.
type Monitor struct {
	online atomic.Bool
	sink   notify.Sink
}

// NewMonitor starts in the online state.
func NewMonitor(sink notify.Sink) *Monitor {
	m := &Monitor{sink: notify.Safe(sink)}
	m.online.Store(true)
	return m
}

// Online implements [Connectivity].
func (m *Monitor) Online() bool { return m.online.Load() }

// Set records the new state. Repeating the current state is silent.
func (m *Monitor) Set(online bool) {
	if m.online.Swap(online) != online {
		notify.ConnectivityChange(m.sink, online)
	}
}

// DefaultProbeInterval is used when Probe is given a non-positive interval.
const DefaultProbeInterval = 5 * time.Second

// Probe calls check every interval and feeds the result into Set until ctx is done.
func (m *Monitor) Probe(ctx context.Context, interval time.Duration, check func(context.Context) bool) {
	if interval <= 0 {
		interval = DefaultProbeInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Set(check(ctx))
		}
	}
}
