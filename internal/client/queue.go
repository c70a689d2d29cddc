// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 chastityOS Authors

package client

import (
	"context"
	"encoding/json"

	"github.com/thef4tdaddy/chastityOS-sub012/internal/syncer"
	"github.com/thef4tdaddy/chastityOS-sub012/models"
)

// Write queues one mutation. The local store is updated immediately and the
// operation is durable before Write returns; replay against the remote
// happens in the background. Returns the queued operation.
func (a *App) Write(ctx context.Context, kind models.OpKind, collection, id string, payload json.RawMessage) (models.SyncOperation, error) {
	sc, err := a.coordinator()
	if err != nil {
		return models.SyncOperation{}, err
	}
	return sc.Enqueue(ctx, kind, collection, id, payload)
}

// SyncSnapshot returns the current queue summary. Zero before Run.
func (a *App) SyncSnapshot() models.SyncQueueSnapshot {
	sc, err := a.coordinator()
	if err != nil {
		return models.SyncQueueSnapshot{}
	}
	return sc.Snapshot()
}

// ManualSync drains every pending operation now. Offline or an already
// running drain are reported in the result, not as errors.
func (a *App) ManualSync(ctx context.Context) (syncer.DrainReport, error) {
	sc, err := a.coordinator()
	if err != nil {
		return syncer.DrainReport{}, err
	}
	return sc.ManualSync(ctx)
}

// RetryFailed flips every failed operation back to pending, then drains.
func (a *App) RetryFailed(ctx context.Context) (syncer.DrainReport, error) {
	sc, err := a.coordinator()
	if err != nil {
		return syncer.DrainReport{}, err
	}
	return sc.RetryFailed(ctx)
}

// ClearQueue removes every queued operation without syncing it and returns
// the number removed. Destructive: already applied local writes stay
// applied locally and will never reach the remote. Confirmation prompts
// belong to the caller.
func (a *App) ClearQueue(ctx context.Context) (int, error) {
	sc, err := a.coordinator()
	if err != nil {
		return 0, err
	}
	return sc.ClearQueue(ctx)
}
