// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 chastityOS Authors

// Package client assembles the sync core into the single facade the
// embedding application talks to.
//
// [New] wires the local store, the remote adapter, the connectivity
// monitor, the result cache, the request coordinator, the sync queue and
// the prefetch service from one [config.Config]; [App.Run] opens the local
// store and starts the background workers, [App.Close] tears everything
// down. Nothing in this package is a process-wide singleton: every instance
// is independent and its lifecycle is explicit.
package client
