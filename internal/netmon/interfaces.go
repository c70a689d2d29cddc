// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 chastityOS Authors

// Package netmon provides the connectivity signal the sync engine keys off.
// A Monitor answers "are we online right now" and notifies listeners on
// transitions only; it never buffers or replays state.
package netmon

import "context"

//go:generate mockgen -source=interfaces.go -destination=../mock/monitor_mock.go -package=mock

// Monitor reports connectivity to the remote store.
type Monitor interface {
	// Online returns the current connectivity state.
	Online() bool

	// Subscribe registers a listener invoked on every online/offline
	// transition. The returned cancel func removes the listener; it is safe
	// to call more than once.
	Subscribe(fn func(online bool)) (cancel func())
}

// Pinger is the probe target. The remote adapter satisfies it.
type Pinger interface {
	Ping(ctx context.Context) error
}
