// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 chastityOS Authors

// Package syncer owns the durable write queue: optimistic local writes,
// replay against the remote store when connectivity allows, and the
// queue-state snapshot the UI renders.
package syncer

import (
	"context"
	"encoding/json"

	"github.com/thef4tdaddy/chastityOS-sub012/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/syncer_mock.go -package=mock

// Syncer is the write-side surface of the sync engine.
type Syncer interface {
	// Enqueue applies a write to the local store and queues it for replay.
	// The operation is durable before Enqueue returns.
	Enqueue(ctx context.Context, kind models.OpKind, collection, recordID string, payload json.RawMessage) (models.SyncOperation, error)

	// ManualSync drains all pending operations now. Offline or an already
	// running drain are reported, not errors.
	ManualSync(ctx context.Context) (DrainReport, error)

	// RetryFailed flips every failed operation back to pending, then drains.
	RetryFailed(ctx context.Context) (DrainReport, error)

	// ClearQueue removes every queued operation and returns the number
	// removed. Destructive; confirmation is the caller's job.
	ClearQueue(ctx context.Context) (int, error)

	// Snapshot returns the current queue summary.
	Snapshot() models.SyncQueueSnapshot

	// AutoDrain is the periodic maintenance body: drain when online and
	// something is pending. Wired to a background worker.
	AutoDrain(ctx context.Context)

	// PruneSynced removes synced operations older than the retention window.
	PruneSynced(ctx context.Context) (int, error)

	// DrainSignal is the kick channel for the auto-drain worker: it fires
	// after Enqueue while online and on offline→online transitions.
	DrainSignal() <-chan struct{}

	// Close unsubscribes from connectivity updates.
	Close()
}
